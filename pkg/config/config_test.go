package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, AIProviderAnthropic, cfg.AI.Provider)
	assert.Equal(t, "v1.0.0", cfg.App.Version)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.Enrichment.FetchTimeout)
	assert.Equal(t, 25*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Webhooks.Timeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ENRICH_SNIPPET_CHARS", "100")
	t.Setenv("WEBHOOK_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 8000, cfg.Enrichment.SnippetChars, "se acota al mínimo")
	assert.Equal(t, 3*time.Second, cfg.Webhooks.Timeout)
}

func TestLoad_Invalido(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("proveedor", func(t *testing.T) {
		t.Setenv("AI_PROVIDER", "openai")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "bot", Password: "p@ss word", DBName: "partbot", SSLMode: "disable"}
	assert.Equal(t, "postgres://bot:p%40ss%20word@db:5432/partbot?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgresql://x@y/z"
	assert.Equal(t, "postgresql://x@y/z", c.ConnectionString())
}
