// Package browser builds the shared chromedp allocator configuration. Every
// browser instance goes through Options so the stealth flags stay consistent
// across the extraction run and the maintenance CLI.
package browser

import "github.com/chromedp/chromedp"

// DefaultUserAgent matches a current desktop Chrome build. Instagram serves a
// degraded login-walled page to agents it does not recognize.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

const (
	defaultWindowWidth  = 1920
	defaultWindowHeight = 1080
)

// Config holds the per-run browser knobs. Zero values fall back to defaults,
// so Config{Headless: true} is a complete configuration.
type Config struct {
	Headless     bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
}

// Options expands cfg into chromedp allocator options with anti-automation
// measures applied.
func Options(cfg Config) []chromedp.ExecAllocatorOption {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	w, h := cfg.WindowWidth, cfg.WindowHeight
	if w <= 0 {
		w = defaultWindowWidth
	}
	if h <= 0 {
		h = defaultWindowHeight
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),

		// navigator.webdriver is the first thing Instagram inspects
		chromedp.Flag("disable-blink-features", "AutomationControlled"),

		chromedp.UserAgent(ua),
		chromedp.WindowSize(w, h),

		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	if cfg.Headless {
		opts = append(opts, chromedp.Flag("disable-gpu", true))
	}

	return opts
}
