package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/placement-tracker/internal/config"
	"github.com/justsurfingit/placement-tracker/internal/database"
	"github.com/justsurfingit/placement-tracker/internal/events"
	"github.com/justsurfingit/placement-tracker/internal/handlers"
	"github.com/justsurfingit/placement-tracker/internal/logger"
	"github.com/justsurfingit/placement-tracker/internal/middleware"
	"github.com/justsurfingit/placement-tracker/internal/services"
	"github.com/justsurfingit/placement-tracker/internal/store"
	"github.com/justsurfingit/placement-tracker/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const serviceName = "placement-tracker"

func newLogger(cfg *config.Config) zerolog.Logger {
	logger.Init(cfg.AppEnv, cfg.LogLevel)
	return logger.Get()
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(context.Background(), database.Options{
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		ConnMaxLife:  cfg.DBConnMaxLife,
	}, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newJobRepository(db *gorm.DB) services.JobRepository {
	return store.NewJobStore(db)
}

func newStudentRepository(db *gorm.DB) services.StudentRepository {
	return store.NewStudentStore(db)
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (events.Publisher, error) {
	p, err := events.NewPublisher(cfg.NATSURL, cfg.NATSConnTimeout, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Close()
			return nil
		},
	})
	return p, nil
}

// newLimiter uses Redis when it is configured and reachable, and falls back
// to a per-process limiter otherwise.
func newLimiter(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) middleware.Limiter {
	if cfg.RedisAddr == "" {
		return middleware.NewMemoryLimiter()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-memory rate limiter")
		_ = client.Close()
		return middleware.NewMemoryLimiter()
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return middleware.NewRedisLimiter(client)
}

func newRouter(cfg *config.Config, log zerolog.Logger, jobs *handlers.JobHandler, applicants *handlers.ApplicantHandler, limiter middleware.Limiter) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return handlers.NewRouter(jobs, applicants, handlers.RouterOptions{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		RequestTimeout:   cfg.RequestTimeout,
		Limiter:          limiter,
		ExportRateLimit:  cfg.ExportRateLimit,
		ExportRateWindow: cfg.ExportRateWindow,
		Logger:           log,
	})
}

func registerTracer(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) error {
	shutdown, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTelCollectorURL)
	if err != nil {
		return err
	}
	if cfg.OTelCollectorURL != "" {
		log.Info().Str("collector", cfg.OTelCollectorURL).Msg("tracing enabled")
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return nil
}

func registerServer(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger, router *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info().Str("addr", srv.Addr).Msg("Server starting")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("Server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down")
			return srv.Shutdown(ctx)
		},
	})
}

// appOptions is the whole dependency graph. Constructors run only when the
// app starts.
func appOptions() fx.Option {
	return fx.Options(
		fx.Provide(
			config.Load,
			newLogger,
			newDatabase,
			newJobRepository,
			newStudentRepository,
			newPublisher,
			newLimiter,
			services.NewJobService,
			services.NewEligibilityService,
			services.NewApplicantService,
			handlers.NewJobHandler,
			handlers.NewApplicantHandler,
			newRouter,
		),
		fx.Invoke(registerTracer, registerServer),
	)
}

func main() {
	app := fx.New(fx.NopLogger, appOptions())

	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		startupLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		startupLog.Fatal().Err(err).Msg("startup failed")
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("shutdown failed")
	}
}
