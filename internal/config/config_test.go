package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chatdocs", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, 50, cfg.MySQL.MaxOpenConns)
	assert.Equal(t, 10, cfg.MySQL.MaxIdleConns)
	assert.Equal(t, 0, cfg.Redis.PoolSize)
	assert.Equal(t, "document.events", cfg.RabbitMQ.DocumentEventQueue)
	assert.Equal(t, 300, cfg.RAG.ChunkSize)
	assert.Equal(t, 100, cfg.RAG.OverlapSize)
	assert.Equal(t, 5, cfg.RAG.TopK)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MYSQL_MAX_OPEN_CONNS", "25")
	t.Setenv("MYSQL_MAX_IDLE_CONNS", "5")
	t.Setenv("REDIS_POOL_SIZE", "40")
	t.Setenv("RAG_TOP_K", "8")
	t.Setenv("MYSQL_DB", "chatdocs_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.MySQL.MaxOpenConns)
	assert.Equal(t, 5, cfg.MySQL.MaxIdleConns)
	assert.Equal(t, 40, cfg.Redis.PoolSize)
	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Contains(t, cfg.MySQLDSN(), "/chatdocs_test?")
}

func TestEnvOverrideBadIntFallsBack(t *testing.T) {
	t.Setenv("MYSQL_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MySQL.MaxOpenConns)
}
