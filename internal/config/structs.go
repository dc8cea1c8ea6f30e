package config

import (
	"time"

	"github.com/plantr/policyhub/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// AI holds the settings for the external LLM provider used by the
// auto-mapping jobs. Model uses the "provider:model" notation, for
// example "anthropic:claude-sonnet-4-5" or "openai:gpt-4o".
type AI struct {
	Enabled bool
	Model   string
	Timeout time.Duration // per completion call
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	AI        AI
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Session             Session // session settings
}
