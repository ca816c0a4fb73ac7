package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/jredh-dev/pokeguess/internal/roundtoken"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Tokens  TokenConfig
	PokeAPI UpstreamConfig
	TCGdex  TCGdexConfig
	Warmup  WarmupConfig
	Names   NamesConfig

	// VariantVocabulary is a YAML file replacing the embedded form
	// vocabulary. Empty keeps the embedded one.
	VariantVocabulary string
}

type ServerConfig struct {
	Port           string
	Env            string
	LogMode        string
	RequestTimeout time.Duration
}

type TokenConfig struct {
	RoundSecret string
	DailySecret string
	// InsecureDefault is set when no round secret was configured and the
	// built-in development secret is in use.
	InsecureDefault bool
}

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type TCGdexConfig struct {
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
}

type WarmupConfig struct {
	Workers int
	OnStart bool
}

type NamesConfig struct {
	Refresh time.Duration
}

// Load reads a .env file when present, then returns configuration from
// environment variables.
func Load() *Config {
	_ = godotenv.Load()

	roundSecret := getEnv("ROUND_TOKEN_SECRET", "")
	insecure := roundSecret == ""
	if insecure {
		roundSecret = roundtoken.DevSecret
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			LogMode:        getEnv("LOG_MODE", "dev"),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Tokens: TokenConfig{
			RoundSecret:     roundSecret,
			DailySecret:     getEnv("DAILY_TOKEN_SECRET", roundSecret+":daily"),
			InsecureDefault: insecure,
		},
		PokeAPI: UpstreamConfig{
			BaseURL: getEnv("POKEAPI_BASE", "https://pokeapi.co/api/v2"),
			Timeout: getEnvDuration("POKEAPI_TIMEOUT", 12*time.Second),
		},
		TCGdex: TCGdexConfig{
			BaseURL:   getEnv("TCGDEX_BASE", "https://api.tcgdex.net/v2"),
			Timeout:   getEnvDuration("TCGDEX_TIMEOUT", 8*time.Second),
			CacheTTL:  getEnvDuration("TCG_CACHE_TTL", 24*time.Hour),
			CacheSize: getEnvInt("TCG_CACHE_SIZE", 2048),
		},
		Warmup: WarmupConfig{
			Workers: getEnvInt("WARMUP_WORKERS", 8),
			OnStart: getEnvBool("WARMUP_ON_START", true),
		},
		Names: NamesConfig{
			Refresh: getEnvDuration("NAME_INDEX_REFRESH", 30*time.Second),
		},
		VariantVocabulary: getEnv("VARIANT_VOCABULARY", ""),
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
