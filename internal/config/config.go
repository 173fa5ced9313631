// Package config manages environment variables.
//
// It reads variables from the process environment (and an optional
// `.env` file), loads them into structured Go types, and validates
// that required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Two env sources feed koanf, applied in order on top of the defaults:

	- The bare deployment variables DATABASE_URL, DATABASE_NAME and PORT.
	  These are what hosting platforms inject, so they are read as-is.
	- Prefixed overrides for everything else: LEADS_<SECTION>__<KEY>.
	  A double underscore separates nesting levels, a single underscore
	  stays part of the key, e.g.
	  LEADS_SERVER__READ_TIMEOUT -> server.read_timeout -> Config.Server.ReadTimeout
*/

// EnvPrefix is the prefix of the override variables.
const EnvPrefix = "LEADS_"

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig describes the document store connection.
//
// URL is optional on purpose: without it the service still starts and
// reports the store as not initialized. The scheme picks the backend
// (mongodb, mongodb+srv, postgres, postgresql, memory).
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	Name            string `koanf:"name"`
	ConnectTimeout  int    `koanf:"connect_timeout" validate:"min=1"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"min=0"`
}

// defaults are loaded first so every env source only overrides.
var defaults = map[string]interface{}{
	"primary.env":                 "development",
	"server.port":                 "8000",
	"server.read_timeout":         30,
	"server.write_timeout":        30,
	"server.idle_timeout":         60,
	"server.cors_allowed_origins": []string{"*"},
	"database.connect_timeout":    10,
	"database.max_open_conns":     25,
	"database.max_idle_conns":     2,
	"database.conn_max_lifetime":  3600,
	"database.conn_max_idle_time": 300,
}

// deploymentKeys maps the unprefixed variables to koanf keys.
var deploymentKeys = map[string]string{
	"DATABASE_URL":  "database.url",
	"DATABASE_NAME": "database.name",
	"PORT":          "server.port",
}

// LoadConfig loads configuration from defaults and environment variables,
// unmarshals it into Config, validates it and returns it.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("could not load config defaults: %w", err)
	}

	// An empty key from the callback makes the provider skip the variable.
	err := k.Load(env.Provider("", ".", func(s string) string {
		return deploymentKeys[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load deployment env variables: %w", err)
	}

	err = k.Load(env.ProviderWithValue(EnvPrefix, ".", envOverride), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load %s env variables: %w", EnvPrefix, err)
	}

	// Observability is pre-filled so partial overrides merge into defaults.
	mainConfig := &Config{Observability: DefaultObservabilityConfig()}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	// Service name is fixed; environment always follows primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// envOverride turns LEADS_SERVER__CORS_ALLOWED_ORIGINS=a,b into
// ("server.cors_allowed_origins", []string{"a", "b"}).
func envOverride(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")

	if strings.HasSuffix(key, "cors_allowed_origins") {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}

	return key, value
}
