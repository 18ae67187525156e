// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr          string
	MySQLDSN          string
	RedisAddr         string
	MaxSeatsPerReq    int
	SummaryCacheTTL   time.Duration
	ReconcileInterval time.Duration

	SeedEventID    string
	SeedEventName  string
	SeedTotalSeats int
}

// Load reads the environment, applying defaults for anything unset. A .env
// file is honored when present and ignored otherwise.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:          getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/ticketboss?parseTime=true"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		MaxSeatsPerReq:    getenvInt("MAX_SEATS_PER_REQUEST", 10),
		SummaryCacheTTL:   getenvDuration("SUMMARY_CACHE_TTL", 2*time.Second),
		ReconcileInterval: getenvDuration("RECONCILE_INTERVAL", 30*time.Second),
		SeedEventID:       getenv("SEED_EVENT_ID", "node-meetup-2025"),
		SeedEventName:     getenv("SEED_EVENT_NAME", "Node.js Meet-up"),
		SeedTotalSeats:    getenvInt("SEED_TOTAL_SEATS", 500),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
