// Package session owns the live Instagram browsing surface. All navigation
// goes through an explicit *Session handle; nothing in the rest of the
// program touches the browser directly.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/ibeckermayer/reelscribe/internal/browser"
)

// Options configures a browsing session.
type Options struct {
	Headless         bool
	UserAgent        string
	InteractionDelay time.Duration
	NavTimeout       time.Duration
}

// Session is a single live browser session. It must be operated sequentially:
// navigating for one reel while another is mid-extraction corrupts the
// current media reference.
type Session struct {
	ctx           context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	delay         time.Duration
	navTimeout    time.Duration
}

// Start launches a browser and injects the given cookies.
func Start(ctx context.Context, opts Options, cookies []*network.Cookie) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, browser.Options(browser.Config{
		Headless:  opts.Headless,
		UserAgent: opts.UserAgent,
	})...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	navTimeout := opts.NavTimeout
	if navTimeout <= 0 {
		navTimeout = time.Minute
	}

	s := &Session{
		ctx:           browserCtx,
		allocCancel:   allocCancel,
		browserCancel: browserCancel,
		delay:         opts.InteractionDelay,
		navTimeout:    navTimeout,
	}

	if err := s.injectCookies(cookies); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to inject cookies: %w", err)
	}

	return s, nil
}

// Context exposes the underlying browser context for auth flows that need to
// drive the same browser (e.g. credential login).
func (s *Session) Context() context.Context {
	return s.ctx
}

// Close tears down the browser.
func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
}

// injectCookies sets cookies in the browser context
func (s *Session) injectCookies(cookies []*network.Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	return chromedp.Run(s.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range cookies {
				err := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithSecure(c.Secure).
					WithHTTPOnly(c.HTTPOnly).
					WithSameSite(c.SameSite).
					Do(ctx)

				if err != nil {
					return err
				}
			}
			return nil
		}),
	)
}

// Navigate loads the given reel URL, waits for the media element, and returns
// the post-redirect URL.
func (s *Session) Navigate(ctx context.Context, url string) (string, error) {
	runCtx, cancel := s.callCtx(ctx)
	defer cancel()

	var finalURL string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(VideoPlayer, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return "", fmt.Errorf("failed to load reel: %w", err)
	}

	s.throttle()
	return finalURL, nil
}

// WaitMediaReady blocks until the current reel's video element is visible.
func (s *Session) WaitMediaReady(ctx context.Context) error {
	runCtx, cancel := s.callCtx(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx,
		chromedp.WaitVisible(VideoPlayer, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("media not ready: %w", err)
	}
	return nil
}

// ScrollToNext advances the feed to the next reel and returns its URL.
// ArrowDown is more reliable than Space or wheel events on the reels surface.
func (s *Session) ScrollToNext(ctx context.Context) (string, error) {
	runCtx, cancel := s.callCtx(ctx)
	defer cancel()

	before, err := s.CurrentURL(ctx)
	if err != nil {
		return "", err
	}

	if err := chromedp.Run(runCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchKeyEvent(input.KeyDown).
				WithKey("ArrowDown").
				WithCode("ArrowDown").
				WithWindowsVirtualKeyCode(40).
				Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchKeyEvent(input.KeyUp).
				WithKey("ArrowDown").
				WithCode("ArrowDown").
				WithWindowsVirtualKeyCode(40).
				Do(ctx)
		}),
	); err != nil {
		return "", fmt.Errorf("failed to scroll: %w", err)
	}

	// Wait for the URL to change and stabilize
	next, err := waitForURLChange(runCtx, before, time.Second, 10*time.Second, s.CurrentURL)
	if err != nil {
		return "", fmt.Errorf("scroll interrupted: %w", err)
	}
	if next != "" {
		s.throttle()
		return next, nil
	}

	// The feed sometimes lands on a non-reel surface; try a reel link on the
	// page before giving up.
	var href string
	linkCtx, linkCancel := context.WithTimeout(runCtx, 5*time.Second)
	defer linkCancel()
	err = chromedp.Run(linkCtx,
		chromedp.AttributeValue(`a[href*="/reel"]`, "href", &href, nil, chromedp.ByQuery),
	)
	if err == nil && href != "" {
		if !strings.HasPrefix(href, "http") {
			href = "https://www.instagram.com" + href
		}
		return href, nil
	}

	return "", fmt.Errorf("feed exhausted: no further reel after scroll")
}

// CurrentURL returns the browser's current location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	runCtx, cancel := s.callCtx(ctx)
	defer cancel()

	var url string
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Caption reads the current reel's caption text. Absence is not an error:
// a reel with no caption yields an empty string.
func (s *Session) Caption(ctx context.Context) (string, error) {
	runCtx, cancel := s.callCtx(ctx)
	defer cancel()

	selectors, err := json.Marshal(CaptionSelectors)
	if err != nil {
		return "", err
	}

	extractJS := fmt.Sprintf(`
		(function() {
			const selectors = %s;
			for (const sel of selectors) {
				const els = document.querySelectorAll(sel);
				const texts = [];
				els.forEach(el => {
					if (el.offsetParent !== null && el.innerText) {
						texts.push(el.innerText);
					}
				});
				if (texts.length > 0) {
					return texts.join(' ');
				}
			}
			return '';
		})()
	`, selectors)

	var caption string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(extractJS, &caption)); err != nil {
		return "", fmt.Errorf("failed to extract caption: %w", err)
	}
	return caption, nil
}

// callCtx derives a per-call context bounded by the navigation timeout.
// chromedp actions must run on the browser context chain, so the caller's
// context can only cancel, not replace, the derived context.
func (s *Session) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	if ctx == nil {
		return runCtx, cancel
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// waitForURLChange polls fetch until the location has moved off before onto a
// reel URL. Returns "" when the timeout elapses without a change; ctx
// cancellation is honored between polls, not just inside fetch.
func waitForURLChange(ctx context.Context, before string, interval, timeout time.Duration, fetch func(context.Context) (string, error)) (string, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	expired := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-expired:
			return "", nil
		case <-ticker.C:
			url, err := fetch(ctx)
			if err != nil {
				return "", err
			}
			if url != before && isReelURL(url) {
				return url, nil
			}
		}
	}
}

// throttle sleeps for the configured interaction delay.
func (s *Session) throttle() {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

func isReelURL(url string) bool {
	return strings.Contains(url, "/reel/") || strings.Contains(url, "/reels/")
}
