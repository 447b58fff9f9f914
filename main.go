package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thaoanhhaa1/kltn-backend/config"
	"github.com/thaoanhhaa1/kltn-backend/constant"
	"github.com/thaoanhhaa1/kltn-backend/controller"
	"github.com/thaoanhhaa1/kltn-backend/pkg/clients/embedding"
	"github.com/thaoanhhaa1/kltn-backend/pkg/clients/llm"
	"github.com/thaoanhhaa1/kltn-backend/pkg/clients/rabbitmq"
	"github.com/thaoanhhaa1/kltn-backend/pkg/clients/redis"
	"github.com/thaoanhhaa1/kltn-backend/pkg/projectlog"
	"github.com/thaoanhhaa1/kltn-backend/repository/xormimplement"
	"github.com/thaoanhhaa1/kltn-backend/router"
	"github.com/thaoanhhaa1/kltn-backend/service/chat"
	"github.com/thaoanhhaa1/kltn-backend/service/ingest"
	"github.com/thaoanhhaa1/kltn-backend/service/rag"
)

func main() {
	defer func() {
		if serviceErr := recover(); serviceErr != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)
			log.Println("The service exits abnormally, error message:【", serviceErr, "】")
			log.Println("Stack info: ")
			fmt.Printf("==> %s\n", string(buf[:n]))

			os.Exit(1)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	projectlog.Init(cfg)

	// 仓库层
	repositoryFactory, err := xormimplement.NewFactory(cfg)
	if err != nil {
		logrus.Fatalf("Failed to create repository factory: %v", err)
	}

	// 外部客户端
	embeddingClient, err := embedding.NewClient(cfg)
	if err != nil {
		logrus.Fatalf("Failed to create embedding client: %v", err)
	}

	llmClient := llm.NewClient(cfg)

	rabbitClient, err := rabbitmq.NewClient(cfg)
	if err != nil {
		logrus.Fatalf("Failed to create rabbitmq client: %v", err)
	}

	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		logrus.Fatalf("Failed to create redis client: %v", err)
	}
	defer redis.CloseRedisSingle(redisClient)

	// 服务层
	collection := cfg.GetStringOrDefault(config.VectorPropertyCollection, "properties")

	ingestService := ingest.NewService(repositoryFactory, embeddingClient, collection)

	ragService := rag.NewService(
		repositoryFactory,
		embeddingClient,
		llmClient,
		cfg.GetIntOrDefault(config.VectorSearchTopK, constant.DefaultSearchTopK),
	)

	chatService := chat.NewService(
		repositoryFactory,
		ragService,
		chat.NewRedisHistoryCache(redisClient),
		collection,
		cfg.GetIntOrDefault(config.ChatHistoryTopK, constant.DefaultChatHistoryTopK),
		time.Duration(cfg.GetIntOrDefault(config.ChatHistoryCacheTTL, 300))*time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动前把向量表建好
	if err := ingestService.EnsureCollection(ctx); err != nil {
		logrus.Fatalf("Failed to ensure vector collection %s: %v", collection, err)
	}

	// 属性事件消费协程，断线自动重连
	go ingestService.RunWorker(ctx, rabbitClient, cfg.GetString(config.RabbitMQPropertyExchange))

	chatController := controller.NewChatController(chatService, ingestService)
	engine := router.New(chatController, cfg.GetString(config.JwtAccessSecret))

	go startServer(cfg, engine)
	waitStop()
}

func startServer(cfg *config.Config, handler http.Handler) {
	addr := cfg.GetString(config.AppHost)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logrus.Errorf("Failed to ListenAndServer at %v, err = %v", addr, err)
		os.Exit(1)
	}
}

func waitStop() {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	sig := <-sc
	log.Printf("exit: signal=<%d>.\n", sig)
	switch sig {
	case syscall.SIGTERM:
		log.Println("exit: bye :-).")
		os.Exit(0)
	default:
		log.Println("exit: bye :-(.")
		os.Exit(1)
	}
}
