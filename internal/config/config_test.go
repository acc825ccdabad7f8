package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_PATH", "DB_DSN", "DEV", "SEED", "LOG_LEVEL", "LANG_DEFAULT"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "cashpro.db", cfg.Database.Path)
	assert.True(t, cfg.App.Dev)
	assert.False(t, cfg.App.Seed)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "es", cfg.App.Lang)

	read, write, idle := cfg.Server.Timeouts()
	assert.Equal(t, 15*time.Second, read)
	assert.Equal(t, 15*time.Second, write)
	assert.Equal(t, 60*time.Second, idle)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("SEED", "YES")
	t.Setenv("DEV", "0")
	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.App.Seed)
	assert.False(t, cfg.App.Dev)
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "cash", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=cash sslmode=disable", d.PostgresDSN())
	assert.Equal(t, "postgres://u:p@db:5433/cash?sslmode=disable", d.URL())

	d.DSN = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", d.PostgresDSN())
}
