package main

import (
	"fmt"
	"os"

	"github.com/abelbrown/moments/internal/config"
	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/store"
	"github.com/spf13/cobra"
)

var seedOpts = store.DefaultSeedOptions()

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the local database with generated moments",
	Long: `Generate users, standalone moments and stories into the local
database. The same --seed always produces the same captions and
timestamps relative to now.`,
	RunE: runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.Uint64Var(&seedOpts.Seed, "seed", seedOpts.Seed, "Random seed")
	f.IntVar(&seedOpts.Users, "users", seedOpts.Users, "Number of users")
	f.IntVar(&seedOpts.Moments, "moments", seedOpts.Moments, "Number of standalone moments")
	f.IntVar(&seedOpts.Stories, "stories", seedOpts.Stories, "Number of stories")
	f.IntVar(&seedOpts.MomentsPerStory, "per-story", seedOpts.MomentsPerStory, "Moments per story")
	f.IntVar(&seedOpts.ComparisonEvery, "comparison-every", seedOpts.ComparisonEvery, "Every Nth story is a comparison story (0 = none)")
}

func runSeed(cmd *cobra.Command, args []string) error {
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

	stats, err := store.Seed(cmd.Context(), st, seedOpts)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d moments, %d stories into %s\n",
		stats.Users, stats.Moments, stats.Stories, cfg.Store.Path)
	return nil
}
