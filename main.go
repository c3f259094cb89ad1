// Command reelscribe discovers short-form video posts from a direct link, a
// batch file of links, or a keyword search, and converts each into a JSON
// record with its transcribed speech and metadata.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/ibeckermayer/reelscribe/internal/app"
	"github.com/ibeckermayer/reelscribe/internal/config"
	"github.com/ibeckermayer/reelscribe/internal/scheduler"
	"github.com/ibeckermayer/reelscribe/internal/types"
)

var errRunFailed = errors.New("run failed")

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.TimeOnly,
	})))

	// Credentials conventionally live in .env; absence is fine
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errRunFailed) {
			os.Exit(1)
		}
		// Argument/usage errors
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	var (
		seedURL    string
		searchTerm string
		numReels   int
		timeRange  string
		minLength  int
		exactMatch bool
		exclude    string
		safeSearch string
		schedule   string
	)

	cmd := &cobra.Command{
		Use:           "reelscribe",
		Short:         "Extract and transcribe Instagram Reels",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (seedURL == "") == (searchTerm == "") {
				cmd.SilenceUsage = false
				return fmt.Errorf("exactly one of --url or --search is required")
			}

			opts := app.RunOptions{
				SeedURL:     seedURL,
				TargetCount: numReels,
			}

			if searchTerm != "" {
				spec, err := buildFilterSpec(searchTerm, timeRange, minLength, exactMatch, exclude, safeSearch)
				if err != nil {
					cmd.SilenceUsage = false
					return err
				}
				opts.Search = &spec
			}

			cfg := loadConfig()
			a, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("%w: %v", errRunFailed, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if schedule != "" {
				return runScheduled(ctx, a, opts, schedule)
			}
			return runOnce(ctx, a, opts)
		},
	}

	cmd.Flags().StringVar(&seedURL, "url", "", "starting reel URL or path to a file of reel URLs")
	cmd.Flags().StringVar(&searchTerm, "search", "", "search keywords to discover reels")
	cmd.Flags().IntVar(&numReels, "num-reels", 5, "number of reels to process")
	cmd.Flags().StringVar(&timeRange, "time-range", "", "restrict search results: h, d, w, m, or y")
	cmd.Flags().IntVar(&minLength, "min-length", 0, "minimum reel length in minutes")
	cmd.Flags().BoolVar(&exactMatch, "exact-match", false, "match search keywords literally")
	cmd.Flags().StringVar(&exclude, "exclude", "", "comma-separated terms to exclude from search")
	cmd.Flags().StringVar(&safeSearch, "safe-search", "off", "search content filter: off, moderate, or strict")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression to re-run the batch periodically")

	return cmd
}

func runOnce(ctx context.Context, a *app.App, opts app.RunOptions) error {
	summary, err := a.Run(ctx, opts)
	printSummary(summary)
	if err != nil {
		slog.Error("run failed", "err", err)
		return fmt.Errorf("%w: %v", errRunFailed, err)
	}
	return nil
}

func runScheduled(ctx context.Context, a *app.App, opts app.RunOptions, schedule string) error {
	// First batch runs immediately; the cron entry covers subsequent ones.
	if err := runOnce(ctx, a, opts); err != nil {
		return err
	}

	sched := scheduler.New(2 * time.Hour)
	err := sched.AddJob("extract", schedule, func(jobCtx context.Context) error {
		summary, err := a.Run(jobCtx, opts)
		printSummary(summary)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errRunFailed, err)
	}

	sched.Start()
	<-ctx.Done()
	<-sched.Stop().Done()
	return nil
}

func printSummary(s types.RunSummary) {
	fmt.Printf("accepted: %d, failed items: %d, skipped seeds: %d\n",
		s.Accepted, s.FailedItems, s.SkippedSeeds)
}

// loadConfig loads the TOML config, creating defaults on first run.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		if os.IsNotExist(err) {
			cfg = config.Default()
			cfg.ApplyEnv()
			if saveErr := cfg.Save(); saveErr != nil {
				slog.Warn("could not save default config", "err", saveErr)
			} else if path, pathErr := config.ConfigPath(); pathErr == nil {
				slog.Info("created default config", "path", path)
			}
		} else {
			slog.Warn("could not load config, using defaults", "err", err)
			cfg = config.Default()
			cfg.ApplyEnv()
		}
	}
	return cfg
}

func buildFilterSpec(keywordsArg, timeRange string, minLength int, exactMatch bool, exclude, safeSearch string) (types.SearchFilterSpec, error) {
	spec := types.SearchFilterSpec{
		Keywords:         keywordsArg,
		MinLengthMinutes: minLength,
		ExactMatch:       exactMatch,
	}

	switch timeRange {
	case "":
		spec.TimeRange = types.TimeRangeNone
	case "h", "d", "w", "m", "y":
		spec.TimeRange = types.TimeRange(timeRange)
	default:
		return spec, fmt.Errorf("invalid --time-range %q: want h, d, w, m, or y", timeRange)
	}

	switch safeSearch {
	case "off":
		spec.SafeSearch = types.SafeSearchOff
	case "moderate":
		spec.SafeSearch = types.SafeSearchModerate
	case "strict":
		spec.SafeSearch = types.SafeSearchStrict
	default:
		return spec, fmt.Errorf("invalid --safe-search %q: want off, moderate, or strict", safeSearch)
	}

	if exclude != "" {
		for _, term := range strings.Split(exclude, ",") {
			if term = strings.TrimSpace(term); term != "" {
				spec.ExcludedTerms = append(spec.ExcludedTerms, term)
			}
		}
	}

	return spec, nil
}
