package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	// Environment
	Env string

	// Server
	Port        string
	ServerHost  string
	CORSOrigins string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeout  time.Duration

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// Passwords
	PasswordHasher string
	BcryptCost     int

	// Observability
	SentryDSN    string
	LogRetention time.Duration
}

// Load reads .env.<NODE_ENV> and .env (when present) and then the process
// environment. Values already set in the environment win over file values.
func Load() *Config {
	env := getEnv("NODE_ENV", getEnv("APP_ENV", "development"))
	_ = godotenv.Load(".env." + env)
	_ = godotenv.Load()

	driver := getEnv("DB_DRIVER", DriverMongo)

	return &Config{
		Env: env,

		Port:        getEnv("PORT", "8080"),
		ServerHost:  getEnv("SERVER_HOST", "localhost"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		DBDriver:   driver,
		DBHost:     getEnv("DB_HOST", defaultDBHost(driver)),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "admin_users"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimeout:  parseDuration(getEnv("DB_TIMEOUT", "10s"), 10*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "1h"), time.Hour),

		PasswordHasher: getEnv("PASSWORD_HASHER", "bcrypt"),
		BcryptCost:     parseInt(getEnv("BCRYPT_COST", "10"), 10),

		SentryDSN:    getEnv("SENTRY_DSN", ""),
		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h"), 30*24*time.Hour),
	}
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if c.DBPassword == "" {
			return errors.New("DB_PASSWORD environment variable is required for the postgres driver")
		}
	default:
		return errors.New("DB_DRIVER must be one of mongo, postgres, memory")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func defaultDBHost(driver string) string {
	if driver == DriverPostgres {
		return "localhost"
	}
	return "mongodb://localhost:27017"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
