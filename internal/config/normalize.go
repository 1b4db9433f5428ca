package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeUser()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTracker()
	c.normalizeServer()
	c.normalizeAssistant()
	if err := c.normalizePresence(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeUser() {
	if value, ok := os.LookupEnv("STUDYROOM_USER"); ok && strings.TrimSpace(value) != "" {
		c.UserID = value
	}
	c.UserID = strings.TrimSpace(c.UserID)
	if c.UserID == "" {
		c.UserID = defaultUserID
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTracker() {
	if c.Tracker.RecentWindow == 0 {
		c.Tracker.RecentWindow = defaultRecentWindow
	}
	c.Tracker.Timezone = strings.TrimSpace(c.Tracker.Timezone)
	if c.Tracker.Timezone == "" {
		c.Tracker.Timezone = defaultTimezone
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))
	if c.Server.Mode == "" {
		c.Server.Mode = defaultServerMode
	}
}

func (c *Config) normalizeAssistant() {
	if c.Assistant.APIKey == "" {
		if value, ok := os.LookupEnv("MISTRAL_API_KEY"); ok {
			c.Assistant.APIKey = value
		}
	}
	c.Assistant.APIKey = strings.TrimSpace(c.Assistant.APIKey)
	c.Assistant.BaseURL = strings.TrimSpace(c.Assistant.BaseURL)
	if c.Assistant.BaseURL == "" {
		c.Assistant.BaseURL = defaultAssistantBaseURL
	}
	c.Assistant.TranscriptionURL = strings.TrimSpace(c.Assistant.TranscriptionURL)
	if c.Assistant.TranscriptionURL == "" {
		c.Assistant.TranscriptionURL = defaultTranscriptionURL
	}
	if strings.TrimSpace(c.Assistant.Model) == "" {
		c.Assistant.Model = defaultAssistantModel
	}
	if strings.TrimSpace(c.Assistant.TranscribeModel) == "" {
		c.Assistant.TranscribeModel = defaultTranscribeModel
	}
	if c.Assistant.TimeoutSeconds == 0 {
		c.Assistant.TimeoutSeconds = defaultAssistantTimeout
	}
}

func (c *Config) normalizePresence() error {
	if strings.TrimSpace(c.Presence.SignalFile) == "" {
		c.Presence.SignalFile = ""
		return nil
	}
	var err error
	if c.Presence.SignalFile, err = expandPath(c.Presence.SignalFile); err != nil {
		return fmt.Errorf("presence.signal_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
