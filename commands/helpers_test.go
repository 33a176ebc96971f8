package commands

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AAVision/learn-redis/connection"
	"github.com/AAVision/learn-redis/internal/redistest"
)

func newTestConn(t *testing.T) *connection.Conn {
	t.Helper()
	srv := redistest.Start(t)
	conn, err := connection.Connect(context.Background(), srv.URL,
		connection.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newKey(name string) string {
	return name + ":" + uuid.NewString()
}
