package config

import (
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the nearby search service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP server.
// - APIKey: The Google Maps API key used for places and geocoding.
// - GeocoderType: The geocoding provider used for free-text addresses (google, nominatim).
// - Country: ISO country code autocomplete and geocoding are restricted to.
// - Language: Language of provider responses.
// - DefaultRadius: Radius in meters used when the user gives none.
// - RateLimit: Requests per second allowed against the Google Maps API.
// - ProviderTimeout: Upper bound for a single provider call.
// - SessionTTL: Idle time after which a search session is dropped.
// - Database: Configuration settings for the optional PostgreSQL search history.
type Config struct {
	Env             string         `yaml:"env"`                   // Env is the current environment: local, dev, prod.
	Port            int            `yaml:"server.port"`           // Port is the HTTP server port.
	APIKey          string         `yaml:"provider.api_key"`      // The API key for accessing Google Maps.
	GeocoderType    string         `yaml:"geocoder.type"`         // GeocoderType selects the free-text geocoder.
	Country         string         `yaml:"provider.country"`      // Country restricts autocomplete and geocoding.
	Language        string         `yaml:"provider.language"`     // Language of provider responses.
	DefaultRadius   int            `yaml:"search.default_radius"` // DefaultRadius in meters.
	RateLimit       int            `yaml:"provider.rate_limit"`   // RateLimit in requests per second.
	ProviderTimeout time.Duration  `yaml:"provider.timeout"`      // ProviderTimeout bounds each provider call.
	SessionTTL      time.Duration  `yaml:"session.ttl"`           // SessionTTL is the idle session lifetime.
	AddressSuffix   string         `yaml:"geocoder.suffix"`       // AddressSuffix narrows typed addresses, e.g. "Los Mochis, Sinaloa".
	Database        PostgresConfig `yaml:"postgres"`              // Database holds the postgres database configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// Enabled reports whether search history persistence is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// MustLoad reads the configuration from the environment and an optional .env file
// and returns a Config struct. It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("VICINITY_ENV", "production")
	v.SetDefault("VICINITY_PORT", "8080")
	v.SetDefault("VICINITY_GEOCODER_TYPE", "google")
	v.SetDefault("VICINITY_COUNTRY", "mx")
	v.SetDefault("VICINITY_LANGUAGE", "es")
	v.SetDefault("VICINITY_DEFAULT_RADIUS", "300")
	v.SetDefault("VICINITY_RATE_LIMIT", "50")
	v.SetDefault("VICINITY_PROVIDER_TIMEOUT", "10s")
	v.SetDefault("VICINITY_SESSION_TTL", "30m")
	v.SetDefault("DB_PORT", "5432")

	port, err := strconv.Atoi(v.GetString("VICINITY_PORT"))
	if err != nil {
		panic("failed to parse server port from configuration")
	}

	radius, err := strconv.Atoi(v.GetString("VICINITY_DEFAULT_RADIUS"))
	if err != nil || radius <= 0 {
		panic("failed to parse default radius from configuration, must be a positive integer")
	}

	rateLimit, err := strconv.Atoi(v.GetString("VICINITY_RATE_LIMIT"))
	if err != nil {
		panic("failed to parse rate limit from configuration, must be an integer types")
	}

	timeout, err := time.ParseDuration(v.GetString("VICINITY_PROVIDER_TIMEOUT"))
	if err != nil {
		panic("failed to parse provider timeout from configuration")
	}

	ttl, err := time.ParseDuration(v.GetString("VICINITY_SESSION_TTL"))
	if err != nil || ttl <= 0 {
		panic("failed to parse session ttl from configuration")
	}

	return &Config{
		Env:             v.GetString("VICINITY_ENV"),
		Port:            port,
		APIKey:          v.GetString("VICINITY_PROVIDER_KEY"),
		GeocoderType:    v.GetString("VICINITY_GEOCODER_TYPE"),
		Country:         v.GetString("VICINITY_COUNTRY"),
		Language:        v.GetString("VICINITY_LANGUAGE"),
		DefaultRadius:   radius,
		RateLimit:       rateLimit,
		ProviderTimeout: timeout,
		SessionTTL:      ttl,
		AddressSuffix:   v.GetString("VICINITY_ADDRESS_SUFFIX"),
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
	}
}
