package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/config"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB         *gorm.DB
	Driver     string
	IsFallback bool
}

// Options controls connection pooling and logging for Open.
type Options struct {
	Pool     config.PoolConfig
	LogLevel string
	Logger   logging.Logger
}

// Info is a snapshot of the connection state, reported by the health endpoint.
type Info struct {
	Driver          string `json:"driver"`
	IsFallback      bool   `json:"isFallback"`
	OpenConnections int    `json:"openConnections"`
	InUse           int    `json:"inUse"`
	Idle            int    `json:"idle"`
}

// Open connects to the given driver ("mysql", "postgres", "sqlite"), applies
// the pool settings and runs the schema migration.
func Open(driver, dsn string, opts Options) (*Database, error) {
	var dialector gorm.Dialector

	switch driver {
	case "mysql":
		if dsn == "" {
			return nil, errors.New("MySQL DSN is not configured")
		}
		dialector = mysql.Open(dsn)
	case "postgres":
		if dsn == "" {
			return nil, errors.New("PostgreSQL DSN is not configured")
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(sqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	gormLog := logger.Default.LogMode(gormLogLevel(opts.LogLevel))
	if opts.Logger != nil {
		gormLog = newGormLogger(opts.Logger, gormLogLevel(opts.LogLevel))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" && isSQLiteMemory(dsn) {
		// every new connection to an in-memory database starts empty
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		sqlDB.SetMaxOpenConns(opts.Pool.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.Pool.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(opts.Pool.ConnMaxLifetime)
	}

	d := &Database{DB: db, Driver: driver}
	if err := d.Migrate(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}

	if opts.Logger != nil {
		opts.Logger.Info(context.Background(), "database ready", "driver", driver)
	}
	return d, nil
}

// InitWithFallback opens primary and, if that fails or is disabled, fallback.
// With both disabled it runs on an in-memory SQLite database.
func InitWithFallback(primary, fallback config.DBConnection, opts Options) (*Database, error) {
	ctx := context.Background()
	var errs []error

	if primary.Enable {
		db, err := Open(primary.Driver, primary.DSN, opts)
		if err == nil {
			return db, nil
		}
		errs = append(errs, fmt.Errorf("primary: %w", err))
		if opts.Logger != nil {
			opts.Logger.Warn(ctx, "primary database unavailable, trying fallback",
				"driver", primary.Driver, "error", err)
		}
	}

	if fallback.Enable || !primary.Enable {
		driver, dsn := fallback.Driver, fallback.DSN
		if !fallback.Enable {
			driver, dsn = "sqlite", ":memory:"
			if opts.Logger != nil {
				opts.Logger.Warn(ctx, "all databases disabled, using in-memory sqlite")
			}
		}
		db, err := Open(driver, dsn, opts)
		if err == nil {
			db.IsFallback = primary.Enable
			return db, nil
		}
		errs = append(errs, fmt.Errorf("fallback: %w", err))
	}

	return nil, errors.Join(errs...)
}

func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(models.All()...)
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) GetInfo() Info {
	info := Info{Driver: d.Driver, IsFallback: d.IsFallback}
	if sqlDB, err := d.DB.DB(); err == nil {
		st := sqlDB.Stats()
		info.OpenConnections = st.OpenConnections
		info.InUse = st.InUse
		info.Idle = st.Idle
	}
	return info
}

func ensureSQLiteDir(dsn string) error {
	if isSQLiteMemory(dsn) {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sqlite directory: %w", err)
	}
	return nil
}

func isSQLiteMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// sqliteDSN turns on foreign key enforcement so cascades work.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1"
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
