package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chatdocs/internal/ai"
	"chatdocs/internal/blob"
	"chatdocs/internal/cache"
	"chatdocs/internal/config"
	"chatdocs/internal/model"
	mysqlClient "chatdocs/internal/platform/mysql"
	rabbitmqClient "chatdocs/internal/platform/rabbitmq"
	redisClient "chatdocs/internal/platform/redis"
	"chatdocs/internal/repository"
	"chatdocs/internal/worker"
)

// App holds every explicitly constructed collaborator; nothing is ambient.
type App struct {
	Config         *config.Config
	MySQL          *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	Blob           *blob.Store
	Embedder       *ai.EmbeddingClient
	Chat           *ai.ChatClient
	EmbeddingCache *cache.EmbeddingCache
	EventWorker    *worker.DocumentEventWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), cfg.MySQL.MaxOpenConns, cfg.MySQL.MaxIdleConns)
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Chunk{}, &model.DocumentEvent{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.DocumentEventQueue)
	if err != nil {
		return nil, err
	}

	blobStore, err := blob.New(ctx, blob.Config{
		Endpoint:  cfg.Blob.Endpoint,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
		Bucket:    cfg.Blob.Bucket,
		UseSSL:    cfg.Blob.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	eventRepo := repository.NewDocumentEventRepository(mysqlDB)
	eventWorker := worker.NewDocumentEventWorker(mqConn, eventRepo, cfg.RabbitMQ.DocumentEventQueue)
	if err := eventWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start event worker failed: %w", err)
	}

	return &App{
		Config: cfg,
		MySQL:  mysqlDB,
		Redis:  redisCli,
		MQConn: mqConn,
		Blob:   blobStore,
		Embedder: ai.NewEmbeddingClient(ai.EmbeddingConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.EmbeddingModel,
		}),
		Chat: ai.NewChatClient(ai.ChatConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		}),
		EmbeddingCache: cache.NewEmbeddingCache(redisCli, time.Duration(cfg.Redis.EmbeddingTTLSeconds)*time.Second),
		EventWorker:    eventWorker,
		StartedAt:      time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
