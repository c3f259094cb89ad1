package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/ibeckermayer/reelscribe/internal/types"
)

// directSource walks the live feed starting from a single seeded reel URL.
// "Advancing" means scrolling the browsing surface to the next reel in its
// natural feed order, not popping from a precomputed list. The first pull
// yields the seed itself; the controller opens the page, so the surface is
// always positioned on the last candidate when the next scroll happens.
type directSource struct {
	surface  Surface
	startURL string
	started  bool
}

// Direct creates a source seeded by one reel URL. The URL is validated
// eagerly so a malformed seed fails before the browser is touched.
func Direct(surface Surface, startURL string) (Source, error) {
	if err := validateReelURL(startURL); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSeed, startURL, err)
	}
	return &directSource{surface: surface, startURL: startURL}, nil
}

func (d *directSource) Next(ctx context.Context) (types.ReelCandidate, error) {
	var rawURL string

	if !d.started {
		d.started = true
		rawURL = d.startURL
	} else {
		nextURL, err := d.surface.ScrollToNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return types.ReelCandidate{}, err
			}
			// The feed ran out of reachable reels. Normal end of stream.
			return types.ReelCandidate{}, ErrExhausted
		}
		rawURL = nextURL
	}

	id := ExtractReelID(rawURL)
	if id == "" {
		return types.ReelCandidate{}, ErrExhausted
	}

	return types.ReelCandidate{
		RawURL: rawURL,
		ReelID: id,
		Origin: types.OriginDirect,
	}, nil
}

func (d *directSource) Close() error {
	return nil
}
