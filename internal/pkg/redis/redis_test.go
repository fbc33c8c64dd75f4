package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/lk2023060901/raven-ai/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DB = -1
	assert.Error(t, cfg.Validate())
}

func TestNew_AgainstMiniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()

	client, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, client.Key("csrf", "sid-1"), "tok", 0).Err())
	assert.True(t, mr.Exists("raven:csrf:sid-1"))

	_, err = client.Get(ctx, client.Key("missing")).Result()
	assert.ErrorIs(t, err, Nil)
}

func TestNew_PingFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := DefaultConfig()
	cfg.Addr = addr
	_, err = New(cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	c := NewFromClient(nil, "raven:", logger.NewNop())
	assert.Equal(t, "raven:csrf:abc", c.Key("csrf", "abc"))
	assert.Equal(t, "raven:", c.Key())
}

func TestClient_HealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()
	client, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, client.HealthCheck(context.Background()))
}
