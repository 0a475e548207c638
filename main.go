package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rfidledger/m/internal/api"
	"rfidledger/m/internal/config"
	"rfidledger/m/internal/journal"
	"rfidledger/m/internal/ledger"
	"rfidledger/m/internal/logger"
	"rfidledger/m/internal/metrics"
	"rfidledger/m/internal/seed"
)

const version = "0.3.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile, seedFile, tagsCSV string

	cmd := &cobra.Command{
		Use:           "rfidledger",
		Short:         "RFID inventory ledger server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			} else {
				_ = godotenv.Load()
			}
			cfg := config.Load()
			if seedFile != "" {
				cfg.SeedFile = seedFile
			}
			if tagsCSV != "" {
				cfg.TagsCSV = tagsCSV
			}
			return serve(cfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Env file to load instead of ./.env")
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed file (overrides SEED_FILE)")
	cmd.Flags().StringVar(&tagsCSV, "tags-csv", "", "CSV of tag mappings to import at start (overrides TAGS_CSV)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rfidledger version %s\n", version)
		},
	})

	return cmd
}

func serve(cfg config.Config) error {
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer log.Sync()

	catalog, err := seed.LoadCatalog(cfg.SeedFile)
	if err != nil {
		return err
	}

	l := ledger.New(ledger.Options{
		QuarantineCapacity: cfg.QuarantineCapacity,
		DefaultLocationID:  cfg.DefaultLocationID,
	})
	if err := l.Load(catalog.Seed); err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	log.Info("ledger seeded",
		zap.Int("items", len(catalog.Items)),
		zap.Int("locations", len(catalog.Locations)),
		zap.Int("tags", len(catalog.Tags)))

	if cfg.TagsCSV != "" {
		if _, err := seed.LoadTags(l, cfg.TagsCSV, log); err != nil {
			return err
		}
	}

	m := metrics.New(l)
	l.AddObserver(m)

	opts := api.Options{
		Catalog:           catalog,
		MissionID:         cfg.MissionID,
		DefaultLocationID: cfg.DefaultLocationID,
		AllowedOrigins:    cfg.AllowedOrigins,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		Logger:            log,
		Metrics:           m.Handler(),
		Scans:             m,
	}

	if cfg.JournalDSN != config.JournalDisabled {
		j, err := journal.Open(cfg.JournalDSN, log)
		if err != nil {
			return err
		}
		defer j.Close()
		l.AddObserver(j)
		opts.Journal = j
		log.Info("journal enabled")
	}

	handler := api.New(l, opts)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("rfid ledger server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
