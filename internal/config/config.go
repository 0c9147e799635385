package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evacreport/backend/internal/models"
)

// Store drivers selectable through STORE_DRIVER.
const (
	DriverMemory    = "memory"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverFirestore = "firestore"
)

type Config struct {
	Port               string
	Env                string
	GinMode            string
	StoreDriver        string
	DatabaseURL        string
	DBHost             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBPort             string
	DBSSLMode          string
	SQLitePath         string
	FirebaseCreds      string
	FirebaseProjectID  string
	JWTSecret          string
	DemographicsSchema models.DemographicsSchema
	CounterRefreshSpec string
	SessionSweepSpec   string
	SessionIdleTimeout time.Duration
	CORSOrigin         string
	LogLevel           string
	SeedFile           string
}

// Load reads configuration from the environment. Call godotenv.Load first
// to pick up a .env file.
func Load() (*Config, error) {
	schema, err := models.ParseDemographicsSchema(getEnv("DEMOGRAPHICS_SCHEMA", ""))
	if err != nil {
		return nil, err
	}
	idle, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", "evacreport"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBSSLMode:          getEnv("DB_SSLMODE", "disable"),
		SQLitePath:         getEnv("SQLITE_PATH", "evacreport.db"),
		FirebaseCreds:      getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseProjectID:  getEnv("FIREBASE_PROJECT_ID", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		DemographicsSchema: schema,
		CounterRefreshSpec: getEnv("COUNTER_REFRESH_SPEC", "@every 5m"),
		SessionSweepSpec:   getEnv("SESSION_SWEEP_SPEC", "@every 10m"),
		SessionIdleTimeout: idle,
		CORSOrigin:         getEnv("CORS_ORIGIN", "http://localhost:3000"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		SeedFile:           getEnv("SEED_FILE", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverPostgres, DriverSQLite:
	case DriverFirestore:
		if c.FirebaseCreds == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS is required for the firestore store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PostgresDSN prefers DATABASE_URL and falls back to the DB_* variables.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// UsesSQL reports whether the configured store is backed by gorm.
func (c *Config) UsesSQL() bool {
	return c.StoreDriver == DriverPostgres || c.StoreDriver == DriverSQLite
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
