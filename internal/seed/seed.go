// Package seed resolves a heterogeneous seed (direct URL, file of URLs, or
// search parameters) into a lazy, ordered stream of reel candidates. The
// traversal controller consumes all three origins through the same Source
// interface and never sees origin-specific mechanics.
package seed

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/ibeckermayer/reelscribe/internal/types"
)

var (
	// ErrInvalidSeed marks a malformed direct-URL seed. Run-fatal.
	ErrInvalidSeed = errors.New("invalid seed URL")
	// ErrSeedFile marks an unreadable seed file. Run-fatal.
	ErrSeedFile = errors.New("seed file unreadable")
	// ErrExhausted signals the end of a candidate stream. Normal termination,
	// not a failure.
	ErrExhausted = errors.New("candidate stream exhausted")
)

// Source produces reel candidates one at a time. Next returns ErrExhausted
// when no further candidates are reachable; any other error is fatal to the
// run. Sources are lazy: candidates are materialized only as they are pulled.
type Source interface {
	Next(ctx context.Context) (types.ReelCandidate, error)
	Close() error
}

// Surface is the live browsing surface a direct-URL seed advances through.
// Held and operated only by the seed source; see internal/session for the
// chromedp implementation.
type Surface interface {
	Navigate(ctx context.Context, url string) (finalURL string, err error)
	ScrollToNext(ctx context.Context) (url string, err error)
}

// ExtractReelID pulls the platform-assigned reel identifier out of a URL.
// Returns "" when the URL does not reference a reel.
func ExtractReelID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if (seg == "reel" || seg == "reels") && i+1 < len(segments) {
			if id := segments[i+1]; id != "" {
				return id
			}
		}
	}
	return ""
}

// validateReelURL checks that a URL is absolute http(s) and references a reel.
func validateReelURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("not an absolute http(s) URL")
	}
	if ExtractReelID(rawURL) == "" {
		return errors.New("no reel identifier in URL")
	}
	return nil
}
