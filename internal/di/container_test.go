package di_test

import (
	"context"
	"testing"

	"gomarket/internal/auth/config"
	"gomarket/internal/di"
	"gomarket/internal/shared/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeRedis_UsesConfiguredCredentials(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("redis-password")

	container := di.NewContainer(logger.NewLogger())
	t.Cleanup(func() { container.Close() })

	cfg := &config.Config{
		RedisAddr:     mr.Addr(),
		RedisPassword: "redis-password",
		RedisDB:       1,
	}
	require.NoError(t, container.InitializeRedis(context.Background(), cfg))
	require.NotNil(t, container.Redis)

	// The client must operate on the configured logical database.
	require.NoError(t, container.Redis.Set(context.Background(), "marker", "v", 0).Err())
	got, err := mr.DB(1).Get("marker")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestInitializeRedis_WrongPasswordFails(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("redis-password")

	container := di.NewContainer(logger.NewLogger())
	t.Cleanup(func() { container.Close() })

	cfg := &config.Config{
		RedisAddr:     mr.Addr(),
		RedisPassword: "not-the-password",
	}
	err := container.InitializeRedis(context.Background(), cfg)
	assert.Error(t, err)
}
