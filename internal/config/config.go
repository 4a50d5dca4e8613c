// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv("GO_COURSE_NAV_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings for the portal and fill in the
// defaults a fresh install can run with.
func validate(c *Config) error {
	// validate webserver listening port
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	// validate access-control-allow-origin
	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = 12 * time.Hour
	}

	if c.Course.CacheTTL == 0 {
		c.Course.CacheTTL = 5 * time.Minute
	}

	if c.Course.CacheMaxCost == 0 {
		c.Course.CacheMaxCost = 32 << 20
	}

	mergeDefaultFormats(c)

	return nil
}

// mergeDefaultFormats makes the stock course formats available even when the
// config file does not mention them. A format defined in the file wins over
// the stock definition with the same identifier.
func mergeDefaultFormats(c *Config) {
	if c.Format == nil {
		c.Format = Format{}
	}

	for id, settings := range defaultFormats() {
		if _, ok := c.Format[id]; !ok {
			c.Format[id] = settings
		}
	}
}

func defaultFormats() Format {
	return Format{
		"topics": {Name: "Topics", UsesSections: true, SectionNoun: "topic"},
		"weeks":  {Name: "Weekly", UsesSections: true, SectionNoun: "week", Weekly: true},
		"social": {Name: "Social", UsesSections: false, SectionNoun: "topic"},
	}
}
