package config

// Defaults matching a stock development checkout
const (
	DefaultBaseURL    = "http://localhost:9991"
	DefaultDatabase   = "sqlite://var/dev.db"
	DefaultAdminEmail = "iago@example.com"
	// DefaultBotAPIKey is the placeholder credential every screenshot bot shares
	DefaultBotAPIKey = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	DefaultPort      = 9991
	// DefaultMaxRedirects caps how many redirects a replay follows
	DefaultMaxRedirects = 10
)

// DefaultCaptureCommand renders a single message with the headless browser script
var DefaultCaptureCommand = []string{
	"node", "tools/message-screenshot.js", "{message_id}", "{image_path}", "{base_url}",
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		Database:        DefaultDatabase,
		FixturesDir:     "webhooks/{integration}/fixtures",
		ImageDir:        "static/images/integrations/{integration}",
		AdminEmail:      DefaultAdminEmail,
		BotAPIKey:       DefaultBotAPIKey,
		CaptureCommand:  append([]string(nil), DefaultCaptureCommand...),
		Timeout:         0,
		CaptureTimeout:  0,
		ValidateSSL:     boolPtr(true),
		FollowRedirects: boolPtr(true),
		MaxRedirects:    DefaultMaxRedirects,
		Verbose:         boolPtr(false),
		NoColor:         boolPtr(false),
		Serve: &ServeConfig{
			Port:      DefaultPort,
			RateLimit: 20,
			Burst:     5,
		},
	}
}
