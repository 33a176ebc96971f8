package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLenient(t *testing.T) (*Lenient, *bytes.Buffer, func() error) {
	t.Helper()
	conn := newTestConn(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewLenient(NewStrings(conn), NewHashes(conn), WithLogger(log)), &buf, conn.Close
}

func TestLenientRoundTrip(t *testing.T) {
	c, _, _ := newLenient(t)
	ctx := context.Background()
	key := newKey("excellent-key")

	c.Del(ctx, key)
	assert.Equal(t, 1, c.Set(ctx, key, "my-value"))
	assert.Equal(t, "my-value", c.Get(ctx, key))
	assert.Equal(t, int64(1), c.Del(ctx, key))
	assert.Equal(t, "", c.Get(ctx, key))

	assert.Equal(t, 1, c.Set(ctx, key, "this is me"))
	assert.Equal(t, "this", c.GetRange(ctx, key, 0, 3))
	assert.Equal(t, "this is me", c.GetRange(ctx, key, 0, -1))
	assert.Equal(t, "this is me", c.GetSet(ctx, key, "this is set"))
	assert.Equal(t, "this is set", c.Get(ctx, key))

	bits := newKey("bits")
	assert.Equal(t, int64(0), c.SetBit(ctx, bits, 3, 1))
	assert.Equal(t, int64(1), c.GetBit(ctx, bits, 3))

	hash := newKey("hash-key")
	assert.Equal(t, int64(1), c.HSet(ctx, hash, "key1", "value1"))
	assert.Equal(t, "value1", c.HGet(ctx, hash, "key1"))

	assert.Equal(t, []string{"this is set", ""}, c.MGet(ctx, key, newKey("missing")))
}

func TestLenientMissingKeysLogAtDebug(t *testing.T) {
	c, buf, _ := newLenient(t)
	ctx := context.Background()

	assert.Equal(t, "", c.Get(ctx, newKey("missing")))
	assert.Equal(t, "", c.HGet(ctx, newKey("missing"), "f"))
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.NotContains(t, buf.String(), "level=WARN")
}

func TestLenientDefaultsOnFailure(t *testing.T) {
	c, buf, closeConn := newLenient(t)
	ctx := context.Background()
	require.NoError(t, closeConn())

	assert.Equal(t, 0, c.Set(ctx, "k", "v"))
	assert.Equal(t, "", c.Get(ctx, "k"))
	assert.Equal(t, int64(0), c.Del(ctx, "k"))
	assert.Equal(t, "", c.GetRange(ctx, "k", 0, -1))
	assert.Equal(t, "", c.GetSet(ctx, "k", "v"))
	assert.Equal(t, int64(0), c.GetBit(ctx, "k", 0))
	assert.Equal(t, int64(0), c.SetBit(ctx, "k", 0, 1))
	assert.Equal(t, []string{""}, c.MGet(ctx, "a", "b", "c"))
	assert.Equal(t, int64(0), c.HSet(ctx, "h", "f", "v"))
	assert.Equal(t, "", c.HGet(ctx, "h", "f"))

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "cmd=MGET")
}

func TestLenientInvalidArgumentsUseDefaults(t *testing.T) {
	c, buf, _ := newLenient(t)
	ctx := context.Background()

	assert.Equal(t, int64(0), c.SetBit(ctx, newKey("bits"), 0, 5))
	assert.Equal(t, int64(0), c.HSet(ctx, newKey("h"), "dangling"))
	assert.Equal(t, []string{""}, c.MGet(ctx))
	assert.Contains(t, buf.String(), "invalid argument")
}
