package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/thaoanhhaa1/kltn-backend/config"
)

// RedisClient 单节点模式客户端，进程启动时构造一次
type RedisClient struct {
	*redis.Client
	conf *RedisConfig
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	conf := &RedisConfig{
		Host:     cfg.GetString(config.RedisClientHost),
		Password: cfg.GetString(config.RedisClientPassword),
		Db:       cfg.GetInt(config.RedisClientDb),
	}

	client, err := newRedisSingleApi(conf)
	if err != nil {
		return nil, err
	}

	return &RedisClient{conf: conf, Client: client}, nil
}

func CloseRedisSingle(r *RedisClient) {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			log.Errorf("redis close error: %v", err)
		}
	}
}

// 单节点模式
func newRedisSingleApi(cfg *RedisConfig) (*redis.Client, error) {
	cfg.DefaultConfig()
	r := redis.NewClient(&redis.Options{
		Addr:         cfg.Host,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  time.Second * time.Duration(cfg.DialTimeout),
		ReadTimeout:  time.Second * time.Duration(cfg.ReadTimeout),
		WriteTimeout: time.Second * time.Duration(cfg.WriteTimeout),
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DB:           cfg.Db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := r.Ping(ctx).Result(); err != nil {
		log.Errorf("redis ping error: %v", err)
		return nil, err
	}
	return r, nil
}
