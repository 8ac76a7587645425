package main

import (
	"context"
	"flag"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-engine/internal/api"
	"github.com/d60-Lab/social-engine/internal/api/handler"
	"github.com/d60-Lab/social-engine/internal/cache"
	"github.com/d60-Lab/social-engine/internal/config"
	"github.com/d60-Lab/social-engine/internal/docstore"
	"github.com/d60-Lab/social-engine/internal/repository"
	"github.com/d60-Lab/social-engine/internal/service"
	"github.com/d60-Lab/social-engine/internal/tracing"
	"github.com/d60-Lab/social-engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	if err := logger.Init("info", cfg.Server.Mode != "release"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	tp, err := tracing.Init(ctx, cfg.Tracing.Endpoint, "social-engine")
	if err != nil {
		logger.Warn("tracing init failed", zap.Error(err))
	}
	if tp != nil {
		defer func() { _ = tp.Shutdown(ctx) }()
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		dialector = sqlite.Open(cfg.Database.DSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Error("open database failed", zap.Error(err))
		return
	}

	store, err := docstore.NewGormStore(db, cfg.Database.MaxRetries)
	if err != nil {
		logger.Error("init document store failed", zap.Error(err))
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	accounts := repository.NewAccountRepository(store)
	requests := repository.NewFollowRequestRepository(store)
	bookmarks := repository.NewBookmarkRepository(store)
	boards := repository.NewBoardRepository(store)
	notifications := repository.NewNotificationRepository(store)
	posts := repository.NewPostRepository(store)

	sessions := cache.NewService(rdb, cfg.Redis.CacheTTL)
	accountSource := cache.NewAccountSource(accounts, sessions)

	notifier := service.NewNotifier(notifications)
	locks := service.NewPairLock()
	follows := service.NewFollowService(accounts, requests, notifier, locks, cfg.Follow.IORetries)
	reconciler := service.NewReconciler(bookmarks, boards, posts, accountSource)
	bookmarkSvc := service.NewBookmarkService(bookmarks, posts, reconciler)
	boardSvc := service.NewBoardService(boards, bookmarks, reconciler)

	h := handler.New(follows, bookmarkSvc, boardSvc, reconciler, sessions)
	r := api.NewRouter(cfg, h)

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server exited", zap.Error(err))
	}
}
