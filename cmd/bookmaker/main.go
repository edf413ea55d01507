// Package main provides the entry point for the hackbook bookmaker service.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/activity"
	"github.com/yourusername/hackbook/internal/api"
	"github.com/yourusername/hackbook/internal/config"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/health"
	"github.com/yourusername/hackbook/internal/logger"
	"github.com/yourusername/hackbook/internal/metrics"
	"github.com/yourusername/hackbook/internal/odds"
	"github.com/yourusername/hackbook/internal/recompute"
	"github.com/yourusername/hackbook/internal/repository"
	"github.com/yourusername/hackbook/internal/scheduler"
	"github.com/yourusername/hackbook/internal/settlement"
	"github.com/yourusername/hackbook/internal/stream"
	"github.com/yourusername/hackbook/internal/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Hackbook bookmaker starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database schema")
	}
	appLog.Info("Database connection established")

	// Initialize repositories
	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create repositories")
	}

	// Metrics registry and endpoint
	metrics.InitRegistry()
	if cfg.Metrics.Enabled {
		startMetricsServer(ctx, cfg.Metrics, appLog)
	}

	// Websocket odds stream
	hub := stream.NewHub(originPolicy(cfg.Server.AllowedOrigins), appLog)

	// Pricing engine
	oddsCache := odds.NewCache(time.Duration(cfg.Odds.CacheTTLSeconds) * time.Second)
	jitter := odds.NewJitter(cfg.Odds.JitterSeed, cfg.Odds.JitterSpan)
	engine := odds.NewEngine(
		cfg.Odds,
		repos.Odds,
		repos.Team,
		repos.Prize,
		jitter,
		appLog,
		odds.WithCache(oddsCache),
		odds.WithPublisher(hub),
	)

	// Recompute worker
	worker := recompute.NewWorker(engine, cfg.Settlement.RecomputeQueueLen, cfg.Settlement.RecomputeRetries, appLog)
	worker.Start(ctx)

	// Settlement service
	settlementSvc := settlement.NewService(
		repos.Settlement,
		repos.Odds,
		worker,
		cfg.Settlement.MaxRetries,
		cfg.SettlementBackoff(),
		cfg.SettlementTimeout(),
		appLog,
	)

	// Activity sync and scheduled jobs
	ghClient := activity.NewGitHubClient(cfg.Activity, appLog)
	syncer := activity.NewSyncer(ghClient, repos.Team, cfg.Activity.LookbackDays, appLog)

	sched := scheduler.NewScheduler(engine, appLog)
	if cfg.App.HackathonID != "" {
		hackathonID, err := uuid.Parse(cfg.App.HackathonID)
		if err != nil {
			appLog.WithError(err).Fatal("Invalid hackathon_id in configuration")
		}
		if err := sched.ScheduleOddsRefresh(cfg.Scheduler.OddsRefreshCron, hackathonID); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule odds refresh")
		}
		if err := sched.ScheduleActivitySync(cfg.Scheduler.ActivitySyncCron, syncer, hackathonID); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule activity sync")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}

		// Price everything once at startup so the API has odds to serve
		if result, err := engine.PriceHackathon(ctx, hackathonID); err != nil {
			appLog.WithError(err).Warn("Initial odds refresh failed; scheduler will retry")
		} else {
			appLog.Infof("Initial odds refresh completed: %s", result.String())
		}
	} else {
		appLog.Warn("No hackathon_id configured; periodic odds refresh disabled")
	}

	// Health check server
	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Port:        fmt.Sprintf("%d", cfg.Server.HealthPort),
		Logger:      appLog,
		DB:          db,
	})
	if err := healthSrv.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Public API server
	apiSrv := api.NewServer(cfg.Server, settlementSvc, repos, oddsCache, hub.HandleWS, appLog)
	if cfg.Tracing.Enabled {
		if err := tracing.Initialize(cfg.Tracing, appLog); err != nil {
			appLog.WithError(err).Fatal("Failed to initialize tracing")
		}
		apiSrv.Use(tracing.Middleware(cfg.App.Name))
	}
	if err := apiSrv.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start API server")
	}

	healthSrv.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"api_port":    cfg.Server.Port,
		"health_port": cfg.Server.HealthPort,
	}).Info("Hackbook bookmaker is running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthSrv.SetReady(false)
	if sched.IsRunning() {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Error stopping scheduler")
		}
	}
	if err := apiSrv.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error stopping API server")
	}

	cancel()
	worker.Wait()

	appLog.Info("Hackbook bookmaker shut down successfully")
}

// originPolicy builds the websocket origin check from the configured
// allowlist. An empty list allows every origin.
func originPolicy(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		if _, ok := set["*"]; ok {
			return true
		}
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

// startMetricsServer serves the Prometheus endpoint on its own port
func startMetricsServer(ctx context.Context, cfg config.MetricsConfig, appLog *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		appLog.WithFields(logrus.Fields{
			"port": cfg.Port,
			"path": cfg.Path,
		}).Info("Metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Error("Metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
