package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration
type Config struct {
	Version       int                 `toml:"version"`
	Instagram     InstagramConfig     `toml:"instagram"`
	Browser       BrowserConfig       `toml:"browser"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Search        SearchConfig        `toml:"search"`
	Keywords      KeywordsConfig      `toml:"keywords"`
	Output        OutputConfig        `toml:"output"`
}

type InstagramConfig struct {
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	SessionID string `toml:"session_id"`
}

type BrowserConfig struct {
	Headless           bool   `toml:"headless"`
	UserAgent          string `toml:"user_agent"`
	InteractionDelayMS int    `toml:"interaction_delay_ms"`
	NavigationTimeoutS int    `toml:"navigation_timeout_s"`
}

type TranscriptionConfig struct {
	// ModelSize is one of tiny/base/small/medium/large.
	ModelSize string `toml:"model_size"`
	Language  string `toml:"language"`
	TimeoutS  int    `toml:"timeout_s"`
}

type SearchConfig struct {
	MaxRetries    int `toml:"max_retries"`
	RetryDelayMS  int `toml:"retry_delay_ms"`
	MaxResults    int `toml:"max_results"`
	HTTPTimeoutS  int `toml:"http_timeout_s"`
	DownloadTimeS int `toml:"download_timeout_s"`
}

type KeywordsConfig struct {
	Enabled  bool     `toml:"enabled"`
	Override bool     `toml:"override"`
	List     []string `toml:"list"`
}

type OutputConfig struct {
	Dir     string `toml:"dir"`
	IndexDB string `toml:"index_db"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Browser: BrowserConfig{
			Headless:           false,
			InteractionDelayMS: 500,
			NavigationTimeoutS: 60,
		},
		Transcription: TranscriptionConfig{
			ModelSize: "base",
			Language:  "en",
			TimeoutS:  600,
		},
		Search: SearchConfig{
			MaxRetries:    3,
			RetryDelayMS:  1000,
			MaxResults:    50,
			HTTPTimeoutS:  30,
			DownloadTimeS: 300,
		},
		Keywords: KeywordsConfig{
			Enabled: false,
		},
		Output: OutputConfig{
			Dir:     "output",
			IndexDB: "",
		},
	}
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "reelscribe"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads config from disk and applies environment overrides
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// ApplyEnv overlays environment variables onto the config. Environment values
// take precedence over the file so credentials can live in .env instead of
// the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("INSTAGRAM_USERNAME"); v != "" {
		c.Instagram.Username = v
	}
	if v := os.Getenv("INSTAGRAM_PASSWORD"); v != "" {
		c.Instagram.Password = v
	}
	if v := os.Getenv("INSTAGRAM_SESSION_ID"); v != "" {
		c.Instagram.SessionID = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("WHISPER_MODEL"); v != "" {
		c.Transcription.ModelSize = v
	}
	if v := os.Getenv("BROWSER_HEADLESS"); v != "" {
		c.Browser.Headless = parseBool(v)
	}
	if v := os.Getenv("ENABLE_KEYWORD_CHECK"); v != "" {
		c.Keywords.Enabled = parseBool(v)
	}
	if v := os.Getenv("REELSCRIBE_KEYWORDS"); v != "" {
		c.Keywords.List = splitList(v)
	}
	if v := os.Getenv("INTERACTION_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Browser.InteractionDelayMS = n
		}
	}
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
