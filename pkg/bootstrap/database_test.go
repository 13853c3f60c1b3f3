package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailstats/internal/config"
	"emailstats/internal/logger"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host: "db", Port: 5432, User: "stats", Password: "secret", DBName: "email",
	})
	assert.Equal(t, "postgres://stats:secret@db:5432/email?sslmode=disable", dsn)

	dsn = PostgresDSN(config.PostgresConfig{
		Host: "db", Port: 6432, User: "u", Password: "p", DBName: "d", SSLMode: "require",
	})
	assert.Equal(t, "postgres://u:p@db:6432/d?sslmode=require", dsn)
}

func TestInitRedisWithoutHostIsOptional(t *testing.T) {
	dc := NewDatabaseConnector(&config.Config{}, logger.NopLogger())

	rdb, err := dc.InitRedis(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestBaseWithoutBroker(t *testing.T) {
	b := NewBase(&config.Config{}, logger.NopLogger())

	require.NoError(t, b.InitBroker())
	assert.Nil(t, b.Producer)
	assert.Empty(t, b.ShutdownBroker())
	assert.NoError(t, b.Shutdown(context.Background(), nil))
}
