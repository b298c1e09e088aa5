package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/api"
	"github.com/mkovalev/filevault/internal/controller"
	"github.com/mkovalev/filevault/internal/migrations"
	"github.com/mkovalev/filevault/internal/service"
	"github.com/mkovalev/filevault/internal/storage"
	"github.com/mkovalev/filevault/internal/storage/postgres"
	"github.com/mkovalev/filevault/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()

	db, dbCleanup, err := util.NewDBConnection(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.Apply(db, logger); err != nil {
		logger.Fatal(zap.Error(err))
	}

	redisClient, redisCleanup, err := util.NewRedisClient(logger, util.NewRedisConfig())
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	store := postgres.NewStorage(db)
	cleanupFuncs := []func(){dbCleanup, redisCleanup}

	codec := service.NewTokenCodec(util.NewTokenConfig())
	lifecycle := service.NewTokenLifecycle(codec, store, store, logger)
	authService := service.NewAuthService(lifecycle, store, logger)
	fileService, err := service.NewFileService(store, util.NewUploadConfig(), logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	limiter := service.NewLoginRateLimiter(redisClient, util.NewRateLimiterConfig(), logger)

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go runSessionJanitor(janitorCtx, store, logger, util.JanitorInterval())

	ctrl := controller.NewController(logger, authService, fileService)

	apiServer := api.NewAPI(ctrl, lifecycle, limiter, util.NewServerConfig(), logger, cleanupFuncs)
	apiServer.Run(ctx)
}

// runSessionJanitor sweeps expired session rows; expiry enforcement itself
// never depends on the sweep, it only keeps the table small.
func runSessionJanitor(ctx context.Context, sessions storage.SessionRepository, logger *zap.SugaredLogger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := sessions.DeleteExpiredSessions(ctx, time.Now())
			if err != nil {
				logger.Errorw("session sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Infow("expired sessions swept", "deleted", deleted)
			}
		}
	}
}
