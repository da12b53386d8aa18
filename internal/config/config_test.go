package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Database.Primary.Driver)
	assert.Equal(t, "./data/vsx.db", cfg.Database.Primary.DSN)
	assert.True(t, cfg.Database.Primary.Enable)
	assert.Equal(t, "sqlite", cfg.Database.Fallback.Driver)
	assert.Equal(t, 25, cfg.Database.Pool.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "/api", cfg.Server.APIPrefix)
	assert.Equal(t, "/uploads", cfg.Upload.URLPrefix)
	assert.Equal(t, int64(25<<20), cfg.Upload.MaxSize)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")
	t.Setenv("UPLOAD_DIR", "/srv/media")
	t.Setenv("UPLOAD_URL_PREFIX", "media/")
	t.Setenv("API_PREFIX", "/v1/")
	t.Setenv("PRIMARY_DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_USERNAME", "vsx")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DATABASE", "vsx")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("AUTH_RATE_LIMIT_RPS", "0")

	cfg := Load()

	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 48*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "/srv/media", cfg.Upload.Dir)
	assert.Equal(t, "/media", cfg.Upload.URLPrefix)
	assert.Equal(t, "/v1", cfg.Server.APIPrefix)
	assert.Equal(t, "postgres", cfg.Database.Primary.Driver)
	assert.Equal(t, "postgres://vsx:pw@localhost:5432/vsx?sslmode=disable", cfg.Database.Primary.DSN)
	assert.Equal(t, 7, cfg.Database.Pool.MaxOpenConns)
	assert.Zero(t, cfg.RateLimit.RPS)
}

func TestLoad_DatabaseURLOverrides(t *testing.T) {
	t.Setenv("PRIMARY_DB_DRIVER", "mysql")
	t.Setenv("DATABASE_URL", "user:pw@tcp(db:3306)/vsx?parseTime=True")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.Database.Primary.Driver)
	assert.Equal(t, "user:pw@tcp(db:3306)/vsx?parseTime=True", cfg.Database.Primary.DSN)
}

func TestLoad_UnknownPrimaryDriverIsDisabled(t *testing.T) {
	t.Setenv("PRIMARY_DB_DRIVER", "oracle")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	assert.False(t, cfg.Database.Primary.Enable)
}

func TestBuildMySQLDSN(t *testing.T) {
	t.Setenv("MYSQL_USERNAME", "root")
	t.Setenv("MYSQL_PASSWORD", "pw")
	t.Setenv("MYSQL_DATABASE", "vsx")
	t.Setenv("MYSQL_HOST", "db")

	assert.Equal(t, "root:pw@tcp(db:3306)/vsx?charset=utf8mb4&parseTime=True&loc=UTC",
		buildMySQLDSN("PRIMARY_DB_DSN", "MYSQL_"))

	t.Setenv("MYSQL_DATABASE", "")
	assert.Empty(t, buildMySQLDSN("PRIMARY_DB_DSN", "MYSQL_"))
}

func validConfig() *Config {
	return &Config{
		JWT:     JWTConfig{Secret: "k", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		Upload:  UploadConfig{Dir: "uploads", URLPrefix: "/uploads", MaxSize: 1 << 20},
		Storage: StorageConfig{Backend: StorageLocal},
		Database: DatabaseConfig{
			Primary: DBConnection{Driver: "sqlite", DSN: "x.db", Enable: true},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.JWT.Secret = ""
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg = validConfig()
	cfg.Storage.Backend = "ftp"
	assert.ErrorContains(t, cfg.Validate(), "unsupported STORAGE_BACKEND")

	cfg = validConfig()
	cfg.Storage.Backend = StorageS3
	assert.ErrorContains(t, cfg.Validate(), "S3_BUCKET")

	cfg.Storage.S3.Bucket = "media"
	assert.NoError(t, cfg.Validate())
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "", normalizePrefix("/"))
	assert.Equal(t, "", normalizePrefix(""))
	assert.Equal(t, "/api", normalizePrefix("api"))
	assert.Equal(t, "/api/v1", normalizePrefix("/api/v1/"))
}
