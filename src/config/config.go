package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config ค่าตั้งค่าทั้งหมดของระบบ อ่านจาก environment (และ .env ถ้ามี)
type Config struct {
	AppURI         string
	AllowedOrigins string
	FrontendURL    string

	StoreDriver  string
	MongoURI     string
	MongoDB      string
	PostgresDSN  string
	StoreTimeout time.Duration

	RedisURI          string
	WorkerConcurrency int

	JWTSecret   string
	AdminEmails []string

	TimeZone *time.Location

	GeoTimeout         time.Duration
	GeoCacheTTL        time.Duration
	GeoRatePerSecond   float64
	NominatimURL       string
	NominatimUserAgent string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirect     string
}

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load โหลด .env (ถ้ามี) แล้วอ่านค่าต่าง ๆ พร้อมค่า default
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Warning: No .env file found")
	}

	tz := getEnv("TIMEZONE", "Asia/Kuala_Lumpur")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppURI:         getEnv("APP_URI", "8888"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getEnv("MONGO_DB", "StaffClockDB"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		StoreTimeout: getDuration("STORE_TIMEOUT", 5*time.Second),

		RedisURI:          os.Getenv("REDIS_URI"),
		WorkerConcurrency: getInt("WORKER_CONCURRENCY", 5),

		JWTSecret:   getEnv("JWT_SECRET", "your_secret_key"),
		AdminEmails: splitList(os.Getenv("ADMIN_EMAILS")),

		TimeZone: loc,

		GeoTimeout:         getDuration("GEO_TIMEOUT", 4*time.Second),
		GeoCacheTTL:        getDuration("GEO_CACHE_TTL", 24*time.Hour),
		GeoRatePerSecond:   getFloat("GEO_RATE_PER_SECOND", 1),
		NominatimURL:       getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "StaffClock/1.0"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirect:     os.Getenv("GOOGLE_REDIRECT"),
	}

	if cfg.JWTSecret == "your_secret_key" {
		log.Println("⚠️ JWT_SECRET not set, using development fallback")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

// splitList แยก "a@x.com, b@y.com" เป็น slice (lowercase)
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
