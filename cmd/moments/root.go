package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/moments/internal/api"
	"github.com/abelbrown/moments/internal/bus"
	"github.com/abelbrown/moments/internal/config"
	"github.com/abelbrown/moments/internal/feed"
	"github.com/abelbrown/moments/internal/gesture"
	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/store"
	"github.com/abelbrown/moments/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	configPath string
	offline    bool
	target     string
)

var rootCmd = &cobra.Command{
	Use:   "moments",
	Short: "Scroll through moments and stories in the terminal",
	Long: `moments pages through a feed of moments and stories one slide at a
time. Stories scroll sideways through their own moments. Slides are
fetched from the feed service as you approach the end of what is loaded.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.moments/config.json)")
	rootCmd.Flags().BoolVar(&offline, "offline", false, "Read the local database instead of the feed service")
	rootCmd.Flags().StringVar(&target, "target", "", "Feed to open: home or @username (default: first configured target)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(config.Dir(), logging.ParseLevel(cfg.Log.Level)); err != nil {
		return err
	}
	defer logging.Close()

	var svc feed.Service
	if offline {
		st, err := openStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		svc = st
		logging.Info("using local database", "path", cfg.Store.Path)
	} else {
		svc = api.NewClient(api.Options{
			BaseURL:   cfg.API.BaseURL,
			Timeout:   time.Duration(cfg.API.TimeoutMs) * time.Millisecond,
			RateLimit: cfg.API.RateLimit,
			Burst:     cfg.API.Burst,
		})
		logging.Info("using feed service", "url", cfg.API.BaseURL)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	b := bus.New()
	defer b.Close()

	ctrl := feed.New(svc, b, feedConfig(cfg))
	ctrl.SetTarget(startTarget(cfg))

	app := ui.NewApp(ctrl, ui.Options{
		Bus:             b,
		NextTarget:      cfg.NextTarget,
		WheelNotchDelta: cfg.Input.WheelNotchDelta,
		Animate:         cfg.UI.Animate,
		Context:         ctx,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if _, err := tea.NewProgram(app, opts...).Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// feedConfig maps the persistent config onto the controller's tunables.
func feedConfig(cfg *config.Config) feed.Config {
	fc := feed.DefaultConfig()
	fc.PageSize = cfg.Feed.PageSize
	fc.SubPageSize = cfg.Feed.SubPageSize
	fc.Threshold = cfg.Feed.PrefetchThreshold
	fc.WheelThreshold = cfg.Input.WheelThreshold
	fc.SmoothWindow = time.Duration(cfg.Input.SmoothScrollMs) * time.Millisecond
	fc.Swipe = gesture.SwipeConfig{
		MinDistance: cfg.Input.SwipeMinDistance,
		MinVelocity: cfg.Input.SwipeMinVelocity,
		CellAspect:  fc.Swipe.CellAspect,
	}
	return fc
}

func startTarget(cfg *config.Config) string {
	if target != "" {
		return target
	}
	if len(cfg.Feed.Targets) > 0 {
		return cfg.Feed.Targets[0]
	}
	return store.HomeTarget
}

func openStore(path string) (*store.Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}
