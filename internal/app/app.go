// Package app wires configuration, authentication, the browsing session, and
// the traversal controller into runnable extraction batches.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"

	"github.com/ibeckermayer/reelscribe/internal/auth"
	"github.com/ibeckermayer/reelscribe/internal/config"
	"github.com/ibeckermayer/reelscribe/internal/keywords"
	"github.com/ibeckermayer/reelscribe/internal/media"
	"github.com/ibeckermayer/reelscribe/internal/pipeline"
	"github.com/ibeckermayer/reelscribe/internal/record"
	"github.com/ibeckermayer/reelscribe/internal/search"
	"github.com/ibeckermayer/reelscribe/internal/seed"
	"github.com/ibeckermayer/reelscribe/internal/session"
	"github.com/ibeckermayer/reelscribe/internal/traverse"
	"github.com/ibeckermayer/reelscribe/internal/types"
)

// RunOptions describes one extraction batch.
type RunOptions struct {
	// SeedURL is a reel URL or a path to a newline-delimited file of reel
	// URLs. Mutually exclusive with Search.
	SeedURL string
	// Search holds the filter spec for search-seeded runs.
	Search *types.SearchFilterSpec
	// TargetCount is how many reels to accept before stopping.
	TargetCount int
}

// App holds the application state.
type App struct {
	cfg         *config.Config
	authManager *auth.Manager
}

// New creates an App instance.
func New(cfg *config.Config) (*App, error) {
	cookiePath, err := auth.DefaultCookieStorePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get cookie store path: %w", err)
	}

	return &App{
		cfg:         cfg,
		authManager: auth.NewManager(auth.NewCookieStore(cookiePath)),
	}, nil
}

// Run executes one full traversal for the given seed and reports the
// summary. A nil error covers both full and partial fulfillment; a non-nil
// error means the run failed before or during seed resolution.
func (a *App) Run(ctx context.Context, opts RunOptions) (types.RunSummary, error) {
	var summary types.RunSummary

	if opts.TargetCount <= 0 {
		return summary, fmt.Errorf("target count must be positive, got %d", opts.TargetCount)
	}

	store := a.openStore()
	if store != nil {
		defer store.Close()
	}
	persister := record.NewPersister(a.cfg.Output.Dir, store)

	directMode := opts.Search == nil && !isFilePath(opts.SeedURL)

	sess, err := a.startSession(ctx)
	if err != nil {
		if directMode {
			// Direct mode advances by scrolling the live feed; it cannot
			// run without a browser.
			return summary, fmt.Errorf("browsing session required for direct seed: %w", err)
		}
		slog.Warn("continuing without browsing session; captions will be empty", "err", err)
		sess = nil
	}
	if sess != nil {
		defer sess.Close()
	}

	source, err := a.buildSource(sess, opts)
	if err != nil {
		return summary, err
	}
	defer source.Close()

	pipe := pipeline.New(
		media.NewDownloader(time.Duration(a.cfg.Search.DownloadTimeS)*time.Second),
		media.NewAudioExtractor(),
		media.NewTranscriber(
			a.cfg.Transcription.ModelSize,
			a.cfg.Transcription.Language,
			time.Duration(a.cfg.Transcription.TimeoutS)*time.Second,
		),
	)

	pred := keywords.NewPredicate(a.cfg.Keywords.Enabled, a.cfg.Keywords.Override, a.cfg.Keywords.List)

	var opener traverse.PageOpener
	if sess != nil {
		opener = sess
	}

	ctrl := traverse.New(source, opener, pipe, persister, opts.TargetCount, pred)
	summary, err = ctrl.Run(ctx)

	if counter, ok := source.(interface{ Skipped() int }); ok {
		summary.SkippedSeeds = counter.Skipped()
	}

	slog.Info("run finished",
		"accepted", summary.Accepted,
		"failed_items", summary.FailedItems,
		"skipped_seeds", summary.SkippedSeeds,
		"state", ctrl.State(),
	)
	return summary, err
}

// openStore opens the SQLite run index; failures degrade to file-existence
// checks rather than aborting the run.
func (a *App) openStore() *record.Store {
	dbPath := a.cfg.Output.IndexDB
	if dbPath == "" {
		dbPath = filepath.Join(a.cfg.Output.Dir, "index.db")
	}
	store, err := record.NewStore(dbPath)
	if err != nil {
		slog.Warn("failed to open run index, falling back to file checks", "path", dbPath, "err", err)
		return nil
	}
	return store
}

// startSession launches the browser and establishes authentication: stored
// cookies first, then a raw session token, then the credential login flow.
func (a *App) startSession(ctx context.Context) (*session.Session, error) {
	if a.cfg.Instagram.SessionID != "" && !a.authManager.IsAuthenticated() {
		if err := a.authManager.SaveSessionID(a.cfg.Instagram.SessionID); err != nil {
			slog.Warn("failed to store session token", "err", err)
		}
	}

	var cookies []*network.Cookie
	if a.authManager.IsAuthenticated() {
		var err error
		cookies, err = a.authManager.GetCookies()
		if err != nil {
			slog.Warn("failed to load stored cookies", "err", err)
		}
	}

	sess, err := session.Start(ctx, session.Options{
		Headless:         a.cfg.Browser.Headless,
		UserAgent:        a.cfg.Browser.UserAgent,
		InteractionDelay: time.Duration(a.cfg.Browser.InteractionDelayMS) * time.Millisecond,
		NavTimeout:       time.Duration(a.cfg.Browser.NavigationTimeoutS) * time.Second,
	}, cookies)
	if err != nil {
		return nil, err
	}

	if len(cookies) == 0 {
		if err := a.authManager.Login(sess.Context(), a.cfg.Instagram.Username, a.cfg.Instagram.Password); err != nil {
			sess.Close()
			return nil, fmt.Errorf("instagram login: %w", err)
		}
	}

	return sess, nil
}

// buildSource resolves the seed into a candidate source.
func (a *App) buildSource(sess *session.Session, opts RunOptions) (seed.Source, error) {
	if opts.Search != nil {
		client := search.NewClient(
			search.WithRetries(a.cfg.Search.MaxRetries, time.Duration(a.cfg.Search.RetryDelayMS)*time.Millisecond),
			search.WithMaxResults(a.cfg.Search.MaxResults),
			search.WithHTTPClient(&http.Client{Timeout: time.Duration(a.cfg.Search.HTTPTimeoutS) * time.Second}),
		)
		return seed.Search(client, *opts.Search), nil
	}

	if isFilePath(opts.SeedURL) {
		return seed.File(opts.SeedURL)
	}

	if sess == nil {
		return nil, fmt.Errorf("%w: no browsing session for direct seed", seed.ErrInvalidSeed)
	}
	return seed.Direct(sess, opts.SeedURL)
}

// isFilePath reports whether the --url argument points at an existing local
// file rather than a reel URL.
func isFilePath(s string) bool {
	if s == "" {
		return false
	}
	info, err := os.Stat(s)
	return err == nil && info.Mode().IsRegular()
}
