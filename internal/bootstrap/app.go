package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kodechat/internal/config"
	"kodechat/internal/model"
	mysqlClient "kodechat/internal/platform/mysql"
	rabbitmqClient "kodechat/internal/platform/rabbitmq"
	redisClient "kodechat/internal/platform/redis"
	"kodechat/internal/ratelimit"
	"kodechat/internal/repository"
	"kodechat/internal/worker"
)

type App struct {
	Config         *config.Config
	MySQL          *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	Limiter        ratelimit.Limiter
	ActivityWorker *worker.RoomActivityWorker

	memoryLimiter *ratelimit.MemoryWindow
	StartedAt     time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Room{}, &model.Message{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		MQConn:    mqConn,
		StartedAt: time.Now(),
	}

	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	switch cfg.RateLimit.Backend {
	case "memory":
		// Single-instance deployments only; the shared bound needs Redis.
		app.memoryLimiter = ratelimit.NewMemoryWindow(cfg.RateLimit.Requests, window)
		app.Limiter = app.memoryLimiter
	default:
		app.Limiter = ratelimit.NewSlidingWindow(redisCli, cfg.RateLimit.KeyPrefix, cfg.RateLimit.Requests, window)
	}

	roomRepo := repository.NewRoomRepository(mysqlDB)
	activityWorker := worker.NewRoomActivityWorker(mqConn, roomRepo, cfg.RabbitMQ.MessageEventQueue)
	if err := activityWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start room activity worker failed: %w", err)
	}
	app.ActivityWorker = activityWorker

	return app, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.memoryLimiter != nil {
		a.memoryLimiter.Stop()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.ActivityWorker != nil {
		a.ActivityWorker.Close()
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
