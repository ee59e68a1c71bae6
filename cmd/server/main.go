// Command server runs the fundraising platform API with its periodic
// evaluation scheduler.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fundcircle/fundcircle/internal/api/achievements"
	"github.com/fundcircle/fundcircle/internal/api/dashboard"
	"github.com/fundcircle/fundcircle/internal/api/events"
	"github.com/fundcircle/fundcircle/internal/api/users"
	"github.com/fundcircle/fundcircle/internal/cache"
	"github.com/fundcircle/fundcircle/internal/config"
	"github.com/fundcircle/fundcircle/internal/notify"
	"github.com/fundcircle/fundcircle/internal/repository"
	achievementsvc "github.com/fundcircle/fundcircle/internal/service/achievements"
	"github.com/fundcircle/fundcircle/internal/service/conditions"
	eventsvc "github.com/fundcircle/fundcircle/internal/service/events"
	"github.com/fundcircle/fundcircle/internal/service/leaderboard"
	"github.com/fundcircle/fundcircle/internal/service/ledger"
	metricsvc "github.com/fundcircle/fundcircle/internal/service/metrics"
	"github.com/fundcircle/fundcircle/internal/service/participations"
	"github.com/fundcircle/fundcircle/internal/service/scheduler"
	usersvc "github.com/fundcircle/fundcircle/internal/service/users"
	"github.com/fundcircle/fundcircle/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)

	notifier := notify.NewClient(&cfg.Notifications, log)

	// Services
	conditionSvc := conditions.NewService(eventRepo, log)
	achievementSvc := achievementsvc.NewService(achievementRepo, notifier, log)
	measurementTTL := cfg.Scheduler.MeasurementTTL()
	ledgerSvc := ledger.NewService(transactionRepo, redisCache, measurementTTL, conditionSvc, achievementSvc, log)
	participationSvc := participations.NewService(participationRepo, redisCache, measurementTTL, conditionSvc, achievementSvc, log)
	eventSvc := eventsvc.NewService(eventRepo, log)
	userSvc := usersvc.NewService(userRepo, log)
	leaderboardSvc := leaderboard.NewService(transactionRepo, userRepo, participationRepo, achievementRepo, log)
	summarySvc := metricsvc.NewService(eventRepo, transactionRepo, achievementRepo, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := achievementSvc.SyncCatalog(ctx, cfg.Achievements); err != nil {
		log.Fatal().Err(err).Msg("Failed to sync achievement catalog")
	}

	// Scheduler
	sched := scheduler.NewService(cfg, eventRepo, conditionSvc, ledgerSvc, participationSvc, achievementSvc, notifier, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Stop()

	// HTTP server
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Prometheus.Enabled {
		path := cfg.Metrics.Prometheus.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	events.NewHandler(eventSvc, conditionSvc, ledgerSvc, participationSvc, log).RegisterRoutes(v1)
	achievements.NewHandler(achievementSvc, log).RegisterRoutes(v1)
	dashboard.NewHandler(leaderboardSvc, summarySvc, log).RegisterRoutes(v1)
	users.NewHandler(userSvc, log).RegisterRoutes(v1)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}
