package config

import (
	"time"

	"github.com/GoBackOffice/GoBackOffice/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Locale holds the display-language settings. Default is the code used when
// nothing else resolves; Supported is the allow-list negotiated against.
type Locale struct {
	Default   string
	Supported []string
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Locale    Locale
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool    // enable static file browsing (for development purposes only)
	CleanPath      bool    // use clean path middleware to allow multi slash requests
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}
