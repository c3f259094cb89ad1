package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

const (
	loginURL = "https://www.instagram.com/accounts/login/"
	homeURL  = "https://www.instagram.com/"
)

// Manager handles instagram.com authentication
type Manager struct {
	cookieStore *CookieStore
}

// NewManager creates a new auth manager
func NewManager(cookieStore *CookieStore) *Manager {
	return &Manager{cookieStore: cookieStore}
}

// IsAuthenticated checks if we have valid stored credentials
func (m *Manager) IsAuthenticated() bool {
	return m.cookieStore.IsValid()
}

// SaveSessionID stores a raw session token as a synthetic cookie, bypassing
// the credential login flow entirely.
func (m *Manager) SaveSessionID(sessionID string) error {
	return m.cookieStore.Save([]*network.Cookie{SessionIDCookie(sessionID)})
}

// Login drives the Instagram login form inside an existing browser context
// and persists the resulting session cookies. The browser context must
// already be allocated; credentials come from configuration.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("instagram credentials not configured")
	}

	// Already logged in from a previous run's profile?
	var currentURL string
	if err := chromedp.Run(ctx,
		chromedp.Navigate(homeURL),
		chromedp.Sleep(2*time.Second),
		chromedp.Location(&currentURL),
	); err != nil {
		return fmt.Errorf("failed to open instagram: %w", err)
	}
	if !strings.Contains(currentURL, "accounts/login") {
		if cookies, err := m.extractCookies(ctx); err == nil && hasSessionCookie(cookies) {
			return m.cookieStore.Save(cookies)
		}
	}

	if err := chromedp.Run(ctx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(`input[name="username"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="username"]`, username, chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.SendKeys(`input[name="password"]`, password, chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}

	if err := m.waitForLogin(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	// Instagram shows "Save Login Info" and notification prompts after login.
	// Dismissing them is best-effort; a leftover dialog doesn't block scraping.
	m.dismissDialogs(ctx)

	cookies, err := m.extractCookies(ctx)
	if err != nil {
		return fmt.Errorf("failed to extract cookies: %w", err)
	}

	if err := m.cookieStore.Save(cookies); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}

	return nil
}

// waitForLogin polls until the session cookie appears
func (m *Manager) waitForLogin(ctx context.Context) error {
	timeout := time.After(2 * time.Minute)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			return fmt.Errorf("login timeout exceeded")
		case <-ticker.C:
			var url string
			if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
				continue
			}

			if strings.Contains(url, "accounts/login") {
				continue
			}

			cookies, err := m.extractCookies(ctx)
			if err != nil {
				continue
			}
			if hasSessionCookie(cookies) {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// dismissDialogs clicks through post-login popups if present
func (m *Manager) dismissDialogs(ctx context.Context) {
	for i := 0; i < 2; i++ {
		clickCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := chromedp.Run(clickCtx,
			chromedp.Click(`//button[text()="Not Now"] | //div[@role="button" and text()="Not now"]`, chromedp.BySearch),
			chromedp.Sleep(time.Second),
		)
		cancel()
		if err != nil {
			return
		}
	}
}

// extractCookies gets all cookies from the browser
func (m *Manager) extractCookies(ctx context.Context) ([]*network.Cookie, error) {
	var cookies []*network.Cookie

	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(ctx)
			return err
		}),
	)

	return cookies, err
}

func hasSessionCookie(cookies []*network.Cookie) bool {
	for _, c := range cookies {
		if c.Name == "sessionid" && c.Value != "" {
			return true
		}
	}
	return false
}

// Logout clears stored credentials
func (m *Manager) Logout() error {
	return m.cookieStore.Clear()
}

// GetCookies returns the stored cookies for use in the browsing session
func (m *Manager) GetCookies() ([]*network.Cookie, error) {
	return m.cookieStore.GetInstagramCookies()
}
