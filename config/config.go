package config

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/thaoanhhaa1/kltn-backend/pkg/file"
)

const (
	OSConfigPath      = "CONFIG_PATH"
	DefaultConfigName = "config.yaml"
	TypeYaml          = "yaml"

	AppHost            = "app.host"
	AppLogLevel        = "app.log.level"
	AppLogReportcaller = "app.log.reportcaller"

	BaseDbXormType     = "base.db.xorm.type"
	BaseDbXormUsername = "base.db.xorm.username"
	BaseDbXormPassword = "base.db.xorm.password"
	BaseDbXormHost     = "base.db.xorm.host"
	BaseDbXormPort     = "base.db.xorm.port"
	BaseDbXormName     = "base.db.xorm.name"
	BaseDbXormShowsql  = "base.db.xorm.showsql"

	// 大模型调用配置
	ClientChatModelAddr        = "clients.llmModel.addr"
	ClientChatModelModel       = "clients.llmModel.model"
	ClientChatModelApiKey      = "clients.llmModel.apiKey"
	ClientChatModelTemperature = "clients.llmModel.temperature"
	ClientChatModelMaxTokens   = "clients.llmModel.maxTokens"

	// Embedding 客户端配置键
	EmbeddingConfigKeyModelName = "clients.embedding.model_name"
	EmbeddingConfigKeyBaseURL   = "clients.embedding.base_url"
	EmbeddingConfigKeyApiKey    = "clients.embedding.api_key"

	// redis 配置
	RedisClientDb       = "clients.redisClient.db"
	RedisClientHost     = "clients.redisClient.host"
	RedisClientPassword = "clients.redisClient.password"

	// RabbitMQ 配置
	RabbitMQUrl              = "clients.rabbitmq.url"
	RabbitMQPropertyExchange = "clients.rabbitmq.propertyExchange"

	// 向量索引配置
	VectorPropertyCollection = "vector.propertyCollection"
	VectorSearchTopK         = "vector.searchTopK"

	// 聊天历史配置
	ChatHistoryTopK     = "chat.historyTopK"
	ChatHistoryCacheTTL = "chat.historyCacheTTLSeconds"

	// 鉴权配置
	JwtAccessSecret = "auth.jwt.accessSecret"
)

type Config struct {
	*viper.Viper
}

// Load 读取 config.yaml（CONFIG_PATH 可覆盖目录），环境变量覆盖文件配置，"." 替换为 "_"
func Load() (*Config, error) {
	configPath := fmt.Sprintf("./%v", DefaultConfigName)
	if envConfigPath := os.Getenv(OSConfigPath); envConfigPath != "" {
		configPath = fmt.Sprintf("%v/%v", envConfigPath, DefaultConfigName)
		log.Infof("find success in constant CONFIG_PATH, use %s", configPath)
	} else if !file.CheckFileIsExist(configPath) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}

	v := viper.New()
	v.SetConfigType(TypeYaml)
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Config{Viper: v}, nil
}

func (c *Config) GetString(key string) string {
	return c.Viper.GetString(key)
}

func (c *Config) GetStringOrDefault(key string, defaultValue string) string {
	if c.IsSet(key) {
		return c.GetString(key)
	}

	return defaultValue
}

func (c *Config) GetInt(key string) int {
	return c.Viper.GetInt(key)
}

func (c *Config) GetIntOrDefault(key string, defaultValue int) int {
	if c.IsSet(key) {
		return c.GetInt(key)
	}

	return defaultValue
}

func (c *Config) GetBool(key string) bool {
	return c.Viper.GetBool(key)
}

func (c *Config) GetBoolOrDefault(key string, defaultValue bool) bool {
	if c.IsSet(key) {
		return c.GetBool(key)
	}

	return defaultValue
}

func (c *Config) GetFloat64(key string) float64 {
	return c.Viper.GetFloat64(key)
}

func (c *Config) GetFloat64OrDefault(key string, defaultValue float64) float64 {
	if c.IsSet(key) {
		return c.GetFloat64(key)
	}

	return defaultValue
}
