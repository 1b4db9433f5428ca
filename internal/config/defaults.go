package config

const (
	defaultConfigPath        = "~/.config/studyroom/config.toml"
	defaultUserID            = "local"
	defaultDataDir           = "~/.local/share/studyroom"
	defaultLogDir            = "~/.local/share/studyroom/logs"
	defaultRecentWindow      = 7
	defaultTimezone          = "Local"
	defaultServerBind        = "127.0.0.1:5000"
	defaultServerMode        = "release"
	defaultAssistantBaseURL  = "https://api.mistral.ai/v1/chat/completions"
	defaultTranscriptionURL  = "https://api.mistral.ai/v1/audio/transcriptions"
	defaultAssistantModel    = "mistral-small"
	defaultTranscribeModel   = "whisper-1"
	defaultAssistantTimeout  = 60
	defaultAssistantRetryMax = 2
	defaultLogLevel          = "info"
	defaultLogFormat         = "auto"
	defaultLogMaxSizeMB      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		UserID: defaultUserID,
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Tracker: Tracker{
			RecentWindow: defaultRecentWindow,
			Timezone:     defaultTimezone,
		},
		Server: Server{
			Bind: defaultServerBind,
			Mode: defaultServerMode,
		},
		Assistant: Assistant{
			BaseURL:          defaultAssistantBaseURL,
			TranscriptionURL: defaultTranscriptionURL,
			Model:            defaultAssistantModel,
			TranscribeModel:  defaultTranscribeModel,
			TimeoutSeconds:   defaultAssistantTimeout,
			RetryMax:         defaultAssistantRetryMax,
		},
		Logging: Logging{
			Level:     defaultLogLevel,
			Format:    defaultLogFormat,
			MaxSizeMB: defaultLogMaxSizeMB,
		},
	}
}
