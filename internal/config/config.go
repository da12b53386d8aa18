package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	Upload    UploadConfig
	Storage   StorageConfig
	Server    ServerConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Primary  DBConnection
	Fallback DBConnection
	Pool     PoolConfig
	LogLevel string
}

type DBConnection struct {
	Driver string
	DSN    string
	Enable bool
}

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type UploadConfig struct {
	Dir       string
	URLPrefix string
	MaxSize   int64
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type StorageConfig struct {
	Backend string
	S3      S3Config
}

// S3Config points at an S3-compatible bucket (AWS or MinIO).
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	KeyPrefix     string
	PublicBaseURL string
	UsePathStyle  bool
}

type ServerConfig struct {
	Port      string
	BaseURL   string
	APIPrefix string
}

type LogConfig struct {
	Level string
}

// RateLimitConfig throttles the auth endpoints per client IP. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("no .env file loaded:", err)
	}

	return &Config{
		Database: DatabaseConfig{
			Primary:  loadPrimaryDB(),
			Fallback: loadFallbackDB(),
			Pool: PoolConfig{
				MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			},
			LogLevel: getEnvOrDefault("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			Secret:     getEnvOrDefault("JWT_SECRET", getEnvOrDefault("SECRET_KEY", "")),
			AccessTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
			RefreshTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		Upload: UploadConfig{
			Dir:       getEnvOrDefault("UPLOAD_DIR", "./uploads"),
			URLPrefix: normalizePrefix(getEnvOrDefault("UPLOAD_URL_PREFIX", "/uploads")),
			MaxSize:   int64(getEnvInt("UPLOAD_MAX_MB", 25)) << 20,
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", StorageLocal)),
			S3: S3Config{
				Bucket:        os.Getenv("S3_BUCKET"),
				Region:        getEnvOrDefault("S3_REGION", "us-east-1"),
				Endpoint:      os.Getenv("S3_ENDPOINT"),
				AccessKey:     os.Getenv("S3_ACCESS_KEY"),
				SecretKey:     os.Getenv("S3_SECRET_KEY"),
				KeyPrefix:     getEnvOrDefault("S3_KEY_PREFIX", "uploads"),
				PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
				UsePathStyle:  getEnvBool("S3_USE_PATH_STYLE", true),
			},
		},
		Server: ServerConfig{
			Port:      getEnvOrDefault("PORT", "8000"),
			BaseURL:   getEnvOrDefault("BASE_URL", "http://localhost:8000"),
			APIPrefix: normalizePrefix(getEnvOrDefault("API_PREFIX", "/api")),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("AUTH_RATE_LIMIT_RPS", 1),
			Burst: getEnvInt("AUTH_RATE_LIMIT_BURST", 5),
		},
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.Upload.MaxSize <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_MB must be positive"))
	}
	if !c.Database.Primary.Enable && !c.Database.Fallback.Enable {
		log.Println("all databases disabled; an in-memory SQLite database will be used")
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Upload.Dir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR must be set for local storage"))
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET must be set for s3 storage"))
		}
		if c.Storage.S3.PublicBaseURL != "" {
			if _, err := url.Parse(c.Storage.S3.PublicBaseURL); err != nil {
				errs = append(errs, fmt.Errorf("S3_PUBLIC_BASE_URL: %w", err))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend))
	}

	return errors.Join(errs...)
}

func loadPrimaryDB() DBConnection {
	driver := getEnvOrDefault("PRIMARY_DB_DRIVER", "sqlite")
	enable := getEnvBool("PRIMARY_DB_ENABLE", true)

	var dsn string
	switch driver {
	case "mysql":
		dsn = buildMySQLDSN("PRIMARY_DB_DSN", "MYSQL_")
	case "postgres":
		dsn = buildPostgresDSN("PRIMARY_DB_DSN", "POSTGRES_")
	case "sqlite":
		dsn = getEnvOrDefault("PRIMARY_SQLITE_PATH", "./data/vsx.db")
	default:
		log.Printf("unsupported primary database driver: %s", driver)
		enable = false
	}

	// DATABASE_URL overrides whatever the driver-specific settings produced.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		dsn = v
	}

	return DBConnection{
		Driver: driver,
		DSN:    dsn,
		Enable: enable,
	}
}

func loadFallbackDB() DBConnection {
	driver := getEnvOrDefault("FALLBACK_DB_DRIVER", "sqlite")
	enable := getEnvBool("FALLBACK_DB_ENABLE", true)

	var dsn string
	switch driver {
	case "mysql":
		dsn = buildMySQLDSN("FALLBACK_DB_DSN", "FALLBACK_MYSQL_")
	case "postgres":
		dsn = buildPostgresDSN("FALLBACK_DB_DSN", "FALLBACK_POSTGRES_")
	case "sqlite":
		dsn = getEnvOrDefault("FALLBACK_SQLITE_PATH", "./data/fallback.db")
	default:
		driver = "sqlite"
		dsn = "./data/fallback.db"
	}

	return DBConnection{
		Driver: driver,
		DSN:    dsn,
		Enable: enable,
	}
}

func buildMySQLDSN(dsnKey, prefix string) string {
	if dsn := os.Getenv(dsnKey); dsn != "" {
		return dsn
	}

	host := getEnvOrDefault(prefix+"HOST", "localhost")
	port := getEnvOrDefault(prefix+"PORT", "3306")
	username := os.Getenv(prefix + "USERNAME")
	password := os.Getenv(prefix + "PASSWORD")
	database := os.Getenv(prefix + "DATABASE")
	charset := getEnvOrDefault(prefix+"CHARSET", "utf8mb4")

	if username == "" || database == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
		username, password, host, port, database, charset)
}

func buildPostgresDSN(dsnKey, prefix string) string {
	if dsn := os.Getenv(dsnKey); dsn != "" {
		return dsn
	}

	host := getEnvOrDefault(prefix+"HOST", "localhost")
	port := getEnvOrDefault(prefix+"PORT", "5432")
	username := os.Getenv(prefix + "USERNAME")
	password := os.Getenv(prefix + "PASSWORD")
	database := os.Getenv(prefix + "DATABASE")
	sslmode := getEnvOrDefault(prefix+"SSLMODE", "disable")

	if username == "" || database == "" {
		return ""
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(username, password),
		Host:     host + ":" + port,
		Path:     "/" + database,
		RawQuery: "sslmode=" + sslmode,
	}
	return u.String()
}

func normalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	return "/" + strings.Trim(p, "/")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDuration accepts Go duration strings ("15m", "168h").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
