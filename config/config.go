package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"campus-canteen-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DefaultPort         = "5000"
	DefaultDBDriver     = "sqlite"
	DefaultDatabaseURL  = "canteen.db"
	DefaultJWTSecret    = "campus_canteen_dev_secret"
	DefaultStaffPasskey = "VITCARTCANTEEN"
	DefaultDomain       = "vit.edu"
	DefaultMenuCacheTTL = 5 * time.Minute
)

// Config is built once at startup and handed to every component
type Config struct {
	Port              string
	DBDriver          string
	DatabaseURL       string
	JWTSecret         []byte
	StaffPasskey      string
	InstitutionDomain string
	RedisAddr         string
	RedisPassword     string
	MenuCacheTTL      time.Duration
	LogLevel          string
	LogFormat         string
	GinMode           string
}

// UsingDefaultSecret reports whether JWT_SECRET was left unset
func (c *Config) UsingDefaultSecret() bool {
	return string(c.JWTSecret) == DefaultJWTSecret
}

// Load reads an optional .env file and then the process environment
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	ttl := DefaultMenuCacheTTL
	if v := os.Getenv("MENU_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("MENU_CACHE_TTL: %w", err)
		}
		ttl = d
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DefaultDBDriver))
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", driver)
	}

	return &Config{
		Port:              getEnv("PORT", DefaultPort),
		DBDriver:          driver,
		DatabaseURL:       getEnv("DATABASE_URL", DefaultDatabaseURL),
		JWTSecret:         []byte(getEnv("JWT_SECRET", DefaultJWTSecret)),
		StaffPasskey:      getEnv("STAFF_PASSKEY", DefaultStaffPasskey),
		InstitutionDomain: strings.TrimPrefix(getEnv("INSTITUTION_DOMAIN", DefaultDomain), "@"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		MenuCacheTTL:      ttl,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		GinMode:           os.Getenv("GIN_MODE"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// OpenDB connects to the configured datastore
func OpenDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		dialector = sqlite.Open(cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for every model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
