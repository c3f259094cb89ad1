// Package traverse walks a candidate stream, deduplicating by reel ID and
// feeding accepted candidates through the extraction pipeline until a target
// count is reached or the stream runs out. The controller is origin-agnostic:
// direct, file, and search seeds all arrive through the same lazy Source.
package traverse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ibeckermayer/reelscribe/internal/seed"
	"github.com/ibeckermayer/reelscribe/internal/types"
)

// State is the controller's position in its lifecycle.
type State string

const (
	StateSeeding    State = "seeding"
	StateAdvancing  State = "advancing"
	StateAccepting  State = "accepting"
	StateExtracting State = "extracting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Extractor runs the per-reel pipeline. Its result is always a record;
// item-local failures are contained inside it.
type Extractor interface {
	Extract(ctx context.Context, cand types.ReelCandidate, finalURL, caption string) types.ExtractionRecord
}

// Persister writes records and answers whether a reel was already extracted.
type Persister interface {
	Persist(rec types.ExtractionRecord)
	Has(reelID string) bool
}

// PageOpener is the slice of the browsing surface the controller needs:
// opening a candidate resolves redirects and exposes the caption. May be nil,
// in which case candidates pass through unopened with empty captions.
type PageOpener interface {
	Navigate(ctx context.Context, url string) (finalURL string, err error)
	Caption(ctx context.Context) (string, error)
}

// Predicate decides whether a candidate's discoverable text is acceptable.
// The default predicate accepts everything.
type Predicate func(text string) bool

// AcceptAll is the default keyword predicate.
func AcceptAll(string) bool { return true }

// Controller owns the traversal state. Visited-set and counters are mutated
// only here; no other component touches them.
type Controller struct {
	source    seed.Source
	opener    PageOpener
	extractor Extractor
	persister Persister
	target    int
	accept    Predicate

	state    State
	visited  map[string]bool
	rejected map[string]bool
	summary  types.RunSummary
}

// New creates a controller. target must be positive; accept may be nil.
func New(source seed.Source, opener PageOpener, ex Extractor, p Persister, target int, accept Predicate) *Controller {
	if accept != nil && opener == nil {
		slog.Warn("no browsing surface: captions are empty, keyword filter will not be applied")
	}
	if accept == nil {
		accept = AcceptAll
	}
	return &Controller{
		source:    source,
		opener:    opener,
		extractor: ex,
		persister: p,
		target:    target,
		accept:    accept,
		state:     StateSeeding,
		visited:   make(map[string]bool),
		rejected:  make(map[string]bool),
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Run drives the traversal to completion. A nil error means the run ended in
// the done state, including early termination by cancellation or stream
// exhaustion; partial fulfillment is a normal outcome. A non-nil error means
// the run failed on an unrecoverable seed error; records already persisted
// remain valid.
func (c *Controller) Run(ctx context.Context) (types.RunSummary, error) {
	c.state = StateAdvancing

	for c.summary.Accepted < c.target {
		cand, err := c.source.Next(ctx)
		if err != nil {
			if errors.Is(err, seed.ErrExhausted) {
				// Under-fulfillment is normal, not an error.
				slog.Info("candidate stream exhausted",
					"accepted", c.summary.Accepted, "target", c.target)
				c.state = StateDone
				return c.summary, nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.state = StateDone
				return c.summary, nil
			}
			c.state = StateFailed
			return c.summary, fmt.Errorf("seed resolution: %w", err)
		}

		// Stop signals are honored here, between advancing and accepting,
		// never mid-extraction.
		if ctx.Err() != nil {
			slog.Info("run cancelled", "accepted", c.summary.Accepted)
			c.state = StateDone
			return c.summary, nil
		}

		c.state = StateAccepting
		if !c.acceptCandidate(ctx, cand) {
			c.state = StateAdvancing
			continue
		}

		c.state = StateAdvancing
	}

	c.state = StateDone
	return c.summary, nil
}

// acceptCandidate applies dedup and the keyword predicate, then runs the
// extraction for accepted candidates. Returns true when the candidate
// consumed an accept slot.
func (c *Controller) acceptCandidate(ctx context.Context, cand types.ReelCandidate) bool {
	if c.visited[cand.ReelID] || c.rejected[cand.ReelID] {
		slog.Debug("duplicate candidate", "reel_id", cand.ReelID)
		return false
	}

	// Open before any skip decision: a direct-mode source advances by
	// scrolling from the current page, so the surface must be positioned on
	// this candidate even when it is skipped.
	finalURL, caption := c.openCandidate(ctx, cand)

	// A rerun on an already-extracted reel keeps its existing record.
	if c.persister.Has(cand.ReelID) {
		slog.Info("reel already extracted, skipping", "reel_id", cand.ReelID)
		c.visited[cand.ReelID] = true
		c.summary.Accepted++
		return true
	}

	// Without a surface every caption is empty; applying the keyword filter
	// would reject the entire stream.
	if c.opener != nil && !c.accept(caption) {
		slog.Info("candidate rejected by keyword filter", "reel_id", cand.ReelID)
		c.rejected[cand.ReelID] = true
		return false
	}

	c.visited[cand.ReelID] = true
	c.summary.Accepted++

	c.state = StateExtracting
	rec := c.extractor.Extract(ctx, cand, finalURL, caption)
	if rec.Error != "" {
		slog.Warn("extraction failed", "reel_id", cand.ReelID, "err", rec.Error)
		c.summary.FailedItems++
	}

	// The outcome is persisted regardless of status.
	c.persister.Persist(rec)
	return true
}

// openCandidate resolves the candidate on the live surface: redirects and
// caption. Both are best-effort; without a surface the raw URL stands in for
// the final URL and the caption is empty.
func (c *Controller) openCandidate(ctx context.Context, cand types.ReelCandidate) (finalURL, caption string) {
	finalURL = cand.RawURL
	if c.opener == nil {
		return finalURL, ""
	}

	resolved, err := c.opener.Navigate(ctx, cand.RawURL)
	if err != nil {
		slog.Warn("failed to open candidate page", "reel_id", cand.ReelID, "err", err)
		return finalURL, ""
	}
	finalURL = resolved

	caption, err = c.opener.Caption(ctx)
	if err != nil {
		// Caption capture is a fallible side channel; absence never
		// escalates to a pipeline failure.
		slog.Debug("no caption captured", "reel_id", cand.ReelID, "err", err)
		caption = ""
	}
	return finalURL, caption
}
