package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"

	"github.com/ibeckermayer/reelscribe/internal/config"
)

// CookieStore handles storage of instagram.com session cookies
type CookieStore struct {
	path string
}

// StoredCookies represents the persisted cookie data
type StoredCookies struct {
	Cookies    []*network.Cookie `json:"cookies"`
	CapturedAt time.Time         `json:"captured_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// NewCookieStore creates a cookie store at the given path
func NewCookieStore(path string) *CookieStore {
	return &CookieStore{path: path}
}

// DefaultCookieStorePath returns the default path for cookie storage
func DefaultCookieStorePath() (string, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cookies.json"), nil
}

// Save persists cookies to disk
// TODO: Encrypt cookies at rest
func (cs *CookieStore) Save(cookies []*network.Cookie) error {
	dir := filepath.Dir(cs.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// Track the session cookie's expiration so IsValid can answer cheaply
	var earliestExpiry time.Time
	for _, c := range cookies {
		if c.Name == "sessionid" || c.Name == "csrftoken" {
			exp := time.Unix(int64(c.Expires), 0)
			if earliestExpiry.IsZero() || exp.Before(earliestExpiry) {
				earliestExpiry = exp
			}
		}
	}

	stored := StoredCookies{
		Cookies:    cookies,
		CapturedAt: time.Now(),
		ExpiresAt:  earliestExpiry,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(cs.path, data, 0600)
}

// Load retrieves cookies from disk
func (cs *CookieStore) Load() (*StoredCookies, error) {
	data, err := os.ReadFile(cs.path)
	if err != nil {
		return nil, err
	}

	var stored StoredCookies
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	return &stored, nil
}

// IsValid checks if stored cookies are still valid
func (cs *CookieStore) IsValid() bool {
	stored, err := cs.Load()
	if err != nil {
		return false
	}

	if time.Now().After(stored.ExpiresAt) {
		return false
	}

	for _, c := range stored.Cookies {
		if c.Name == "sessionid" && c.Value != "" {
			return true
		}
	}

	return false
}

// Clear removes stored cookies
func (cs *CookieStore) Clear() error {
	return os.Remove(cs.path)
}

// GetInstagramCookies returns only the instagram.com related cookies for use
// in the browsing session
func (cs *CookieStore) GetInstagramCookies() ([]*network.Cookie, error) {
	stored, err := cs.Load()
	if err != nil {
		return nil, err
	}

	var igCookies []*network.Cookie
	for _, c := range stored.Cookies {
		if c.Domain == ".instagram.com" || c.Domain == "instagram.com" {
			igCookies = append(igCookies, c)
		}
	}

	return igCookies, nil
}

// SessionIDCookie builds a synthetic sessionid cookie from a raw session token.
// Lets users who export INSTAGRAM_SESSION_ID skip the credential login flow.
func SessionIDCookie(sessionID string) *network.Cookie {
	return &network.Cookie{
		Name:     "sessionid",
		Value:    sessionID,
		Domain:   ".instagram.com",
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
		Expires:  float64(time.Now().Add(30 * 24 * time.Hour).Unix()),
	}
}
