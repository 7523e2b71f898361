// Package config handles application configuration loading from environment
// variables and the site profile file. It provides a centralized Config
// struct used across the application.
package config

import (
	"fmt"
	"os"
)

// CMS sources.
const (
	SourceDelivery = "delivery"
	SourcePostgres = "postgres"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// CMS settings. CMSSource selects the delivery API or the local
	// postgres mirror.
	CMSSource      string
	CMSBaseURL     string
	CMSSpaceID     string
	CMSEnvironment string
	CMSAccessToken string
	// RevalidateSecret guards the cache invalidation webhook. Empty
	// disables the webhook.
	RevalidateSecret string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI provider settings
	AIProvider     string // "openai", "gemini", "claude", "mistral"
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	GeminiKey      string
	GeminiModel    string
	GeminiBaseURL  string
	ClaudeKey      string
	ClaudeModel    string
	ClaudeBaseURL  string
	MistralKey     string
	MistralModel   string
	MistralBaseURL string

	// AIModeration screens chat prompts through the OpenAI or Mistral
	// moderation endpoint. AI_MODERATION=false turns it off.
	AIModeration bool

	// Google Cloud Translation. Empty falls back to the AI provider.
	GoogleTranslateKey string

	// S3-compatible object storage for published feeds
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BucketPublic string
	S3PublicURL    string

	// SiteFile is an optional YAML site profile.
	SiteFile string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		CMSSource:        envOrDefault("CMS_SOURCE", SourceDelivery),
		CMSBaseURL:       envOrDefault("CMS_BASE_URL", "https://cdn.contentful.com"),
		CMSSpaceID:       os.Getenv("CMS_SPACE_ID"),
		CMSEnvironment:   envOrDefault("CMS_ENVIRONMENT", "master"),
		CMSAccessToken:   os.Getenv("CMS_ACCESS_TOKEN"),
		RevalidateSecret: os.Getenv("REVALIDATE_SECRET"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "cityhall"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "cityhall"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider:     envOrDefault("AI_PROVIDER", "gemini"),
		AIModeration:   envOrDefault("AI_MODERATION", "true") != "false",
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envOrDefault("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:  envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:  envOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		ClaudeKey:      os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:    envOrDefault("CLAUDE_MODEL", "claude-sonnet-4-6"),
		ClaudeBaseURL:  envOrDefault("CLAUDE_BASE_URL", "https://api.anthropic.com"),
		MistralKey:     os.Getenv("MISTRAL_API_KEY"),
		MistralModel:   envOrDefault("MISTRAL_MODEL", "mistral-large-latest"),
		MistralBaseURL: envOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai"),

		GoogleTranslateKey: os.Getenv("GOOGLE_TRANSLATE_API_KEY"),

		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Region:       envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3BucketPublic: envOrDefault("S3_BUCKET_PUBLIC", "cityhall-public"),
		S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),

		SiteFile: os.Getenv("SITE_FILE"),
	}

	switch cfg.CMSSource {
	case SourceDelivery, SourcePostgres:
	default:
		return nil, fmt.Errorf("CMS_SOURCE must be %q or %q, got %q", SourceDelivery, SourcePostgres, cfg.CMSSource)
	}

	if cfg.Env == "production" {
		if cfg.CMSSource == SourceDelivery && (cfg.CMSAccessToken == "" || cfg.CMSSpaceID == "") {
			return nil, fmt.Errorf("CMS_SPACE_ID and CMS_ACCESS_TOKEN must be set in production")
		}
		if cfg.CMSSource == SourcePostgres && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasStorage reports whether S3 upload credentials are configured.
func (c *Config) HasStorage() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
