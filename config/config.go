// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// JWT signing secret (required in production).
	JWTSecret string
	// Usernames allowed to use admin-only routes.
	AdminUsers []string

	// Server
	Debug       bool
	Port        string
	TLSDomains  []string
	CacheMaxAge int

	// Season defaults applied when an admin leaves them blank.
	DefaultAgeCategorySize int
	DefaultBestOf          int

	// Optional YAML file replacing the built-in club list used to seed an empty database.
	ClubsSeedFile string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg := load(newViper())
	cfg.validate()
	return cfg
}

func load(v *viper.Viper) *Config {
	// Defaults
	v.SetDefault("DB_USER", "cc6")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "cc6")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":8080")
	v.SetDefault("TLS_DOMAINS", "cc6.run,www.cc6.run")
	v.SetDefault("DEBUG", false)
	v.SetDefault("ADMIN_USERS", "admin")
	v.SetDefault("CACHE_MAX_AGE", 3600)
	v.SetDefault("DEFAULT_AGE_CATEGORY_SIZE", 5)
	v.SetDefault("DEFAULT_BEST_OF", 3)

	return &Config{
		DatabaseURL:            v.GetString("DATABASE_URL"),
		DBUser:                 v.GetString("DB_USER"),
		DBPass:                 v.GetString("DB_PASS"),
		DBHost:                 v.GetString("DB_HOST"),
		DBPort:                 v.GetString("DB_PORT"),
		DBName:                 v.GetString("DB_NAME"),
		DBSSLMode:              v.GetString("DB_SSLMODE"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		AdminUsers:             splitTrimmed(v.GetString("ADMIN_USERS")),
		Debug:                  v.GetBool("DEBUG"),
		Port:                   v.GetString("PORT"),
		TLSDomains:             splitTrimmed(v.GetString("TLS_DOMAINS")),
		CacheMaxAge:            v.GetInt("CACHE_MAX_AGE"),
		DefaultAgeCategorySize: v.GetInt("DEFAULT_AGE_CATEGORY_SIZE"),
		DefaultBestOf:          v.GetInt("DEFAULT_BEST_OF"),
		ClubsSeedFile:          v.GetString("CLUBS_SEED_FILE"),
	}
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// IsAdmin reports whether username is listed in ADMIN_USERS (case-insensitive).
func (c *Config) IsAdmin(username string) bool {
	normalized := strings.ToLower(strings.TrimSpace(username))
	for _, admin := range c.AdminUsers {
		if normalized == strings.ToLower(admin) {
			return true
		}
	}
	return false
}

func (c *Config) validate() {
	if c.DatabaseURL == "" && c.DBPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET must be set")
	}
	if c.DefaultAgeCategorySize <= 0 {
		log.Fatal("config: DEFAULT_AGE_CATEGORY_SIZE must be positive")
	}
	if c.DefaultBestOf <= 0 {
		log.Fatal("config: DEFAULT_BEST_OF must be positive")
	}
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
