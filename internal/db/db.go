package db

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/cashpro/internal/config"
	"github.com/diewo77/cashpro/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const connectAttempts = 5

// Open connects to the configured database and brings the schema up to date.
// Postgres connections are retried to give the server time to start.
func Open(cfg config.DatabaseConfig, useSQLMigrations bool, log zerolog.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite, "":
		db, err = gorm.Open(sqlite.Open(cfg.Path), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
		}
		// One connection keeps ":memory:" databases shared and serializes writers.
		if sqlDB, serr := db.DB(); serr == nil {
			sqlDB.SetMaxOpenConns(1)
		}
		log.Info().Str("driver", "sqlite").Str("path", cfg.Path).Msg("database opened")
	case config.DriverPostgres:
		dsn := NormalizeDSN(cfg.PostgresDSN())
		for i := 0; i < connectAttempts; i++ {
			db, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}
			log.Warn().Err(err).Int("attempt", i+1).Msg("database connection failed, retrying")
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("connect postgres after %d attempts: %w", connectAttempts, err)
		}
		log.Info().Str("driver", "postgres").Str("dsn", MaskDSN(dsn)).Msg("database opened")
		if useSQLMigrations {
			if err := runSQLMigrations(ToURLDSN(dsn)); err != nil {
				return nil, fmt.Errorf("sql migrations: %w", err)
			}
			return db, nil
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate for all models.
func Migrate(db *gorm.DB) error {
	for _, m := range []any{
		&models.Product{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.Expense{},
	} {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// runSQLMigrations applies the embedded migrations with golang-migrate.
func runSQLMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

var (
	kvPairRegex   = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)
	passwordRegex = regexp.MustCompile(`(password=)([^\s]+)`)
)

// NormalizeDSN accepts either a URL style DSN (postgres://...) or a key=value
// list, trims quotes and whitespace, and adds sslmode=disable when missing.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// ToURLDSN converts a key=value DSN to URL form; golang-migrate only takes URLs.
func ToURLDSN(kvDSN string) string {
	lower := strings.ToLower(kvDSN)
	if kvDSN == "" || strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return kvDSN
	}
	m := map[string]string{}
	for _, part := range strings.Fields(kvDSN) {
		if kv := strings.SplitN(part, "=", 2); len(kv) == 2 {
			m[strings.ToLower(kv[0])] = kv[1]
		}
	}
	host, user, dbname := m["host"], m["user"], m["dbname"]
	if host == "" || user == "" || dbname == "" {
		return kvDSN
	}
	u := &url.URL{Scheme: "postgres", Host: host, Path: "/" + dbname}
	if port := m["port"]; port != "" {
		u.Host = host + ":" + port
	}
	if pass := m["password"]; pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	if sslm, ok := m["sslmode"]; ok {
		u.RawQuery = url.Values{"sslmode": {sslm}}.Encode()
	}
	return u.String()
}

// MaskDSN hides the password of a DSN for logging.
func MaskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "***")
			return u.String()
		}
	}
	return passwordRegex.ReplaceAllString(dsn, `${1}***`)
}
