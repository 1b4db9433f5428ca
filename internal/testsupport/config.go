package testsupport

import (
	"path/filepath"
	"testing"

	"studyroom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.UserID = "tester"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Tracker.Timezone = "UTC"
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Server.Mode = "test"
	cfg.Assistant.APIKey = "test"
	cfg.Presence.SignalFile = filepath.Join(base, "presence")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithRecentWindow overrides the recent window size on the test config.
func WithRecentWindow(n int) ConfigOption {
	return func(c *config.Config) {
		c.Tracker.RecentWindow = n
	}
}

// WithAssistantURL points both assistant endpoints at a test server.
func WithAssistantURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Assistant.BaseURL = url + "/chat/completions"
		c.Assistant.TranscriptionURL = url + "/audio/transcriptions"
		c.Assistant.RetryMax = 0
		c.Assistant.TimeoutSeconds = 5
	}
}
