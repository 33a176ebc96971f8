// Package redistest starts an in-process gedis server for tests, in the
// spirit of net/http/httptest.
package redistest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AAVision/learn-redis/internal/server"
)

// Server is a running test server.
type Server struct {
	*server.Server
	URL string
}

// Start listens on an ephemeral loopback port and stops the server when the
// test finishes.
func Start(tb testing.TB) *Server {
	tb.Helper()

	srv := server.New(server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		tb.Fatalf("start test server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	tb.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				tb.Errorf("test server: %v", err)
			}
		case <-time.After(5 * time.Second):
			tb.Errorf("test server did not stop")
		}
	})

	return &Server{Server: srv, URL: "redis://" + srv.Addr() + "/0"}
}
