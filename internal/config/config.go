package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is built once at startup and shared read-only afterwards.
type Config struct {
	// Server
	Port        string
	AppEnv      string
	CORSOrigins string
	FrontendURL string

	// Storage
	StoreDriver string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Auth
	JWTSecret     string
	JWTExpiry     time.Duration
	ResetTokenTTL time.Duration

	// Seeded admin account
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string

	// Uploads
	UploadDir      string
	UploadMaxBytes int

	// Rate limiter storage (optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Mail
	SendGridAPIURL        string
	MailDefaultSender     string
	MailDefaultSenderName string

	// Background work
	WorkerCount     int
	WorkerQueueSize int

	SentryDSN    string
	LogRetention time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "haven_welfare"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTExpiry:     parseDuration(getEnv("JWT_EXPIRY", "24h"), 24*time.Hour),
		ResetTokenTTL: parseDuration(getEnv("RESET_TOKEN_TTL", "1h"), time.Hour),

		SeedAdminEmail:    strings.ToLower(strings.TrimSpace(getEnv("SEED_ADMIN_EMAIL", ""))),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		SeedAdminName:     getEnv("SEED_ADMIN_NAME", "Super Admin"),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxBytes: parseInt(getEnv("UPLOAD_MAX_BYTES", "4194304"), 4*1024*1024),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),

		SendGridAPIURL:        getEnv("SENDGRID_API_URL", "https://api.sendgrid.com"),
		MailDefaultSender:     getEnv("MAIL_DEFAULT_SENDER", "noreply@havenwelfare.com"),
		MailDefaultSenderName: getEnv("MAIL_DEFAULT_SENDER_NAME", "HavenWelfare"),

		WorkerCount:     parseInt(getEnv("WORKER_COUNT", "4"), 4),
		WorkerQueueSize: parseInt(getEnv("WORKER_QUEUE_SIZE", "256"), 256),

		SentryDSN:    getEnv("SENTRY_DSN", ""),
		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h"), 30*24*time.Hour),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// UsesMemoryStore reports whether persistence is kept in process memory.
func (c *Config) UsesMemoryStore() bool {
	return c.StoreDriver == DriverMemory
}

// CORSOriginList splits CORS_ORIGINS on commas.
func (c *Config) CORSOriginList() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
