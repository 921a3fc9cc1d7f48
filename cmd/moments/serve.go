package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abelbrown/moments/internal/config"
	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/server"
	"github.com/abelbrown/moments/internal/store"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveLatency time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fixture feed service",
	Long: `Serve the local database over the feed REST API. An empty database
is seeded first. --latency delays every API response, which makes
prefetching and the loading states visible.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	serveCmd.Flags().DurationVar(&serveLatency, "latency", -1, "Artificial delay per API request")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.InitWriter(os.Stderr, logging.ParseLevel(cfg.Log.Level))

	st, err := openStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedIfEmpty(ctx, st, cfg); err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	latency := time.Duration(cfg.Server.LatencyMs) * time.Millisecond
	if serveLatency >= 0 {
		latency = serveLatency
	}

	logging.Info("serving feed", "addr", addr, "db", cfg.Store.Path, "latency", latency)
	return server.New(st, server.Options{Latency: latency}).Serve(ctx, addr)
}

func seedIfEmpty(ctx context.Context, st *store.Store, cfg *config.Config) error {
	users, err := st.Users(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	opts := store.DefaultSeedOptions()
	opts.Seed = uint64(cfg.Store.Seed)
	stats, err := store.Seed(ctx, st, opts)
	if err != nil {
		return err
	}
	logging.Info("seeded empty database", "users", stats.Users, "moments", stats.Moments, "stories", stats.Stories)
	return nil
}
