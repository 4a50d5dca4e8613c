package config

import (
	"time"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Auth      Auth
	Course    Course
	Format    Format
	Webserver Webserver
}

// Auth groups the sign-in providers. Local accounts stay available even when
// an external provider is configured, so a directory outage can not lock out
// the site administrators.
type Auth struct {
	Local AuthLocal
	LDAP  auth.LDAPConfig
	OIDC  auth.OIDCConfig
}

// AuthLocal settings for accounts stored in the portal database.
type AuthLocal struct {
	Enabled bool
}

// Course holds the course structure cache settings.
type Course struct {
	CacheTTL     time.Duration // how long a cached course structure stays valid
	CacheMaxCost int64         // cache budget in bytes
}

// FormatSettings describes how a course format presents its content.
type FormatSettings struct {
	Name         string // display name shown on admin pages
	UsesSections bool   // false = single page formats without a section list
	SectionNoun  string // noun used for unnamed sections ("topic", "week")
	Weekly       bool   // true = section dates derive from the course start date
}

// Format maps a course format identifier to its settings.
type Format map[string]FormatSettings

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic        bool    // enable static file browsing (for development purposes only)
	CacheEnabled        bool    // true = enable cache, false = disable cache
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Argon2Salt          string  // salt for argon2 hashing
	Session             Session // session settings
}
