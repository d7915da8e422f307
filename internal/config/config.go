// internal/config/config.go
//
// Environment-driven configuration for the tenpair server.
// Values come from the process environment; main loads a .env file first
// (godotenv) so local development can keep settings in one place.
//
// Environment variables (defaults in parentheses):
//   PORT (5175)                 HTTP listen port
//   LOG_LEVEL (info)            zerolog level name
//   DB_PATH (./data/app.db)     SQLite file
//   STORE (memory)              session store: "memory" | "redis"
//   REDIS_ADDR (localhost:6379) REDIS_PASSWORD () REDIS_DB (0)
//   SESSION_TTL_HOURS (24)      idle lifetime of a stored session
//   JWT_SECRET (dev_secret_change_me)  JWT_EXPIRES_DAYS (14)
//   COOKIE_NAME (tenpair_token) CLIENT_ORIGIN (http://localhost:5173)
//   NODE_ENV ()                 "production" enables Secure cookies
//   DAILY_SALT (local_dev_salt)
//   BOARD_ROWS (10) BOARD_COLS (9) BOARD_FILL_ROWS (3)

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/robalobadob/tenpair/internal/game"
)

// Config is the resolved server configuration.
type Config struct {
	Port     string
	LogLevel string
	DBPath   string

	Store         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	JWTSecret     string
	JWTExpiryDays int
	CookieName    string
	ClientOrigin  string
	Production    bool

	DailySalt string
	Board     game.Config
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:     getEnv("PORT", "5175"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBPath:   getEnv("DB_PATH", "./data/app.db"),

		Store:         getEnv("STORE", "memory"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		SessionTTL:    time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,

		JWTSecret:     getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiryDays: envInt("JWT_EXPIRES_DAYS", 14),
		CookieName:    getEnv("COOKIE_NAME", "tenpair_token"),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:    os.Getenv("NODE_ENV") == "production",

		DailySalt: getEnv("DAILY_SALT", "local_dev_salt"),
		Board: game.Config{
			Rows:     envInt("BOARD_ROWS", game.DefaultRows),
			Cols:     envInt("BOARD_COLS", game.DefaultCols),
			FillRows: envInt("BOARD_FILL_ROWS", game.DefaultFillRows),
		},
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses k as an int, falling back to def when unset or malformed.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
