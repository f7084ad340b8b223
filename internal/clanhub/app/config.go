package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TokenSecret string // Required: HMAC secret for access tokens
	Issuer      string // Optional: issuer claim for access tokens (default: clanhub)

	AccessTTL  time.Duration // Optional: access token lifetime (default: 1h)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 30 days)
	StateTTL   time.Duration // Optional: OAuth state lifetime (default: 10m)

	SteamAPIKey         string // Required for Steam login and presence
	DiscordClientID     string // Required for Discord linking
	DiscordClientSecret string // Required for Discord linking

	BaseURL        string   // Public origin of this service (default: http://localhost:8080)
	FrontendURL    string   // Frontend origin receiving post-login redirects
	AllowedOrigins []string // Origins valid for OAuth return URLs (defaults to FrontendURL)
	AdminSteamIDs  []string // Steam ids granted the admin flag

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./clanhub.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	PresenceTTL          time.Duration // Presence cache lifetime (default: 60s)
}

func LoadConfig() Config {
	// Best-effort .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := Config{
		TokenSecret: os.Getenv("CLANHUB_TOKEN_SECRET"),
		Issuer:      getEnvOrDefault("CLANHUB_ISSUER", "clanhub"),

		AccessTTL:  getEnvDurationOrDefault("CLANHUB_ACCESS_TTL", time.Hour),
		RefreshTTL: getEnvDurationOrDefault("CLANHUB_REFRESH_TTL", 30*24*time.Hour),
		StateTTL:   getEnvDurationOrDefault("CLANHUB_STATE_TTL", 10*time.Minute),

		SteamAPIKey:         os.Getenv("CLANHUB_STEAM_API_KEY"),
		DiscordClientID:     os.Getenv("CLANHUB_DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("CLANHUB_DISCORD_CLIENT_SECRET"),

		BaseURL:       getEnvOrDefault("CLANHUB_BASE_URL", "http://localhost:8080"),
		FrontendURL:   getEnvOrDefault("CLANHUB_FRONTEND_URL", "http://localhost:5173"),
		AdminSteamIDs: splitEnvList("CLANHUB_ADMIN_STEAM_IDS"),

		DatabaseFile:         getEnvOrDefault("CLANHUB_DATABASE_FILE", "clanhub.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		PresenceTTL:          getEnvDurationOrDefault("CLANHUB_PRESENCE_TTL", 60*time.Second),
	}

	cfg.AllowedOrigins = splitEnvList("CLANHUB_ALLOWED_ORIGINS")
	if len(cfg.AllowedOrigins) == 0 && cfg.FrontendURL != "" {
		cfg.AllowedOrigins = []string{cfg.FrontendURL}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

func splitEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
