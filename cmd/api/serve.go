package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-trends-api/internal/cache"
	"github.com/justsurfingit/job-trends-api/internal/config"
	"github.com/justsurfingit/job-trends-api/internal/database"
	"github.com/justsurfingit/job-trends-api/internal/events"
	"github.com/justsurfingit/job-trends-api/internal/handlers"
	"github.com/justsurfingit/job-trends-api/internal/logger"
	"github.com/justsurfingit/job-trends-api/internal/services"
	"github.com/justsurfingit/job-trends-api/internal/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "job-trends-api"

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing the jobs, analytics and health endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	app := fx.New(
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l}
		}),
		fx.Provide(
			loadConfig,
			logger.New,
			newDatabase,
			newCache,
			newPublisher,
			services.NewJobService,
			services.NewAnalyticsService,
			services.NewLLMService,
			services.NewMatcherService,
			handlers.NewJobHandler,
			handlers.NewAnalyticsHandler,
			handlers.NewHealthHandler,
			newRouter,
		),
		fx.Invoke(
			registerTracing,
			registerServer,
		),
	)

	startCtx, cancel := context.WithTimeout(cmd.Context(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return app.Stop(stopCtx)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	return cfg, nil
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.Connect(context.Background(), database.OptionsFromConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

// newCache falls back to a no-op cache when Redis is not configured.
func newCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, analytics cache disabled")
		return cache.Noop{}, nil
	}

	c, err := cache.NewRedis(context.Background(), cache.Options{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		DefaultTTL: cfg.CacheTTL,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	return c, nil
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("NATS_URL not set, job events disabled")
		return events.NewNoopPublisher(), nil
	}

	p, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSConnTimeout, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			p.Close()
			return nil
		},
	})
	return p, nil
}

func newRouter(cfg *config.Config, logger *zap.Logger, jobs *handlers.JobHandler, analytics *handlers.AnalyticsHandler, health *handlers.HealthHandler) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return handlers.NewRouter(cfg, logger, jobs, analytics, health)
}

func registerTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	if cfg.OTELCollectorURL == "" {
		return nil
	}

	shutdown, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELCollectorURL)
	if err != nil {
		return err
	}
	logger.Info("tracing enabled", zap.String("collector", cfg.OTELCollectorURL))
	lc.Append(fx.Hook{
		OnStop: shutdown,
	})
	return nil
}

func registerServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, router *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}
			logger.Info("server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped unexpectedly", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("server shutting down")
			return srv.Shutdown(ctx)
		},
	})
}
