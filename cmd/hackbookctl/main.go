// Package main provides the hackbookctl operational CLI: schema init, manual
// odds refreshes, activity syncs and market lifecycle control.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/hackbook/internal/activity"
	"github.com/yourusername/hackbook/internal/config"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/logger"
	"github.com/yourusername/hackbook/internal/models"
	"github.com/yourusername/hackbook/internal/odds"
	"github.com/yourusername/hackbook/internal/repository"
)

var (
	configFile  string
	hackathonID string
	prizeID     string

	appLog *logrus.Logger
	cfg    *config.Config
	db     *database.DB
	repos  *repository.Repositories
)

var rootCmd = &cobra.Command{
	Use:   "hackbookctl",
	Short: "Operate the hackbook betting engine",
	Long:  `Administrative commands for the hackbook service: initialize the schema, refresh odds, sync team activity and control market lifecycle.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog = logger.NewLogger(cfg.App.LogLevel)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err = database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		repos, err = repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create the database schema if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := db.InitSchema(ctx); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		fmt.Println("Schema initialized")
		return nil
	},
}

var oddsRefreshCmd = &cobra.Command{
	Use:   "odds-refresh",
	Short: "Recompute odds for every prize of a hackathon",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseHackathonID()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		engine := odds.NewEngine(
			cfg.Odds,
			repos.Odds,
			repos.Team,
			repos.Prize,
			odds.NewJitter(cfg.Odds.JitterSeed, cfg.Odds.JitterSpan),
			appLog,
		)

		result, err := engine.PriceHackathon(ctx, id)
		if err != nil {
			return fmt.Errorf("odds refresh failed: %w", err)
		}
		fmt.Printf("Odds refresh completed: %s\n", result.String())
		return nil
	},
}

var activitySyncCmd = &cobra.Command{
	Use:   "activity-sync",
	Short: "Refresh team activity counts from GitHub",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseHackathonID()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		client := activity.NewGitHubClient(cfg.Activity, appLog)
		syncer := activity.NewSyncer(client, repos.Team, cfg.Activity.LookbackDays, appLog)

		if err := syncer.SyncHackathon(ctx, id); err != nil {
			return fmt.Errorf("activity sync failed: %w", err)
		}
		fmt.Println("Activity sync completed")
		return nil
	},
}

var marketOpenCmd = &cobra.Command{
	Use:   "market-open",
	Short: "Open a prize's market for wagers, creating it if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePrizeID()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := repos.Market.Open(ctx, id); err != nil {
			return fmt.Errorf("failed to open market: %w", err)
		}
		fmt.Printf("Market %s is now %s\n", id, models.MarketStatusOpen)
		return nil
	},
}

var marketCloseCmd = &cobra.Command{
	Use:   "market-close",
	Short: "Close a prize's market to new wagers",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePrizeID()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := repos.Market.SetStatus(ctx, id, models.MarketStatusClosed); err != nil {
			return fmt.Errorf("failed to close market: %w", err)
		}
		fmt.Printf("Market %s is now %s\n", id, models.MarketStatusClosed)
		return nil
	},
}

func parsePrizeID() (uuid.UUID, error) {
	if prizeID == "" {
		return uuid.Nil, fmt.Errorf("--prize is required")
	}
	id, err := uuid.Parse(prizeID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid prize id %q: %w", prizeID, err)
	}
	return id, nil
}

func parseHackathonID() (uuid.UUID, error) {
	raw := hackathonID
	if raw == "" {
		raw = cfg.App.HackathonID
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--hackathon is required when app.hackathon_id is not configured")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid hackathon id %q: %w", raw, err)
	}
	return id, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	oddsRefreshCmd.Flags().StringVar(&hackathonID, "hackathon", "", "Hackathon ID (defaults to app.hackathon_id)")
	activitySyncCmd.Flags().StringVar(&hackathonID, "hackathon", "", "Hackathon ID (defaults to app.hackathon_id)")
	marketOpenCmd.Flags().StringVar(&prizeID, "prize", "", "Prize ID")
	marketCloseCmd.Flags().StringVar(&prizeID, "prize", "", "Prize ID")

	rootCmd.AddCommand(dbInitCmd, oddsRefreshCmd, activitySyncCmd, marketOpenCmd, marketCloseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
