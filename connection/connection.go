// Package connection opens the single Redis connection every command
// container works over.
package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/AAVision/learn-redis/config"
	"github.com/AAVision/learn-redis/internal/logger"
)

// ErrEmptyURI is returned by Connect when no URI is given.
var ErrEmptyURI = errors.New("redis uri is empty")

// Option configures Connect and Open.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Conn is one dedicated connection to a Redis-compatible server. It exposes
// only the string and hash commands the lessons use; the client behind it is
// capped at a single connection.
type Conn struct {
	conn   *redis.Conn
	client *redis.Client
	addr   string
	logger *slog.Logger
}

// Connect opens a connection described by a redis://, rediss:// or unix://
// URI, e.g. "redis://127.0.0.1/".
func Connect(ctx context.Context, uri string, opts ...Option) (*Conn, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, ErrEmptyURI
	}
	ropts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri %s: %w", redact(uri), err)
	}
	return dial(ctx, ropts, opts)
}

// Open connects using the configured URL and timeouts.
func Open(ctx context.Context, cfg config.Redis, opts ...Option) (*Conn, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrEmptyURI
	}
	ropts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri %s: %w", redact(cfg.URL), err)
	}
	if cfg.DialTimeout > 0 {
		ropts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		ropts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		ropts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.ClientName != "" {
		ropts.ClientName = cfg.ClientName
	}
	return dial(ctx, ropts, opts)
}

func dial(ctx context.Context, ropts *redis.Options, opts []Option) (*Conn, error) {
	o := options{logger: logger.Named("connection")}
	for _, opt := range opts {
		opt(&o)
	}

	ropts.PoolSize = 1
	ropts.MinIdleConns = 0
	ropts.MaxIdleConns = 1

	client := redis.NewClient(ropts)
	conn := client.Conn()
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", ropts.Addr, err)
	}

	o.logger.Debug("connected", "addr", ropts.Addr, "db", ropts.DB)
	return &Conn{conn: conn, client: client, addr: ropts.Addr, logger: o.logger}, nil
}

// Addr returns the server address.
func (c *Conn) Addr() string { return c.addr }

// Ping checks the server is still answering.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.conn.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping %s: %w", c.addr, err)
	}
	return nil
}

// Close releases the connection and the client behind it.
func (c *Conn) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	client := c.client
	c.client = nil
	err := errors.Join(c.conn.Close(), client.Close())
	c.logger.Debug("connection closed", "addr", c.addr)
	return err
}

// redact hides any password in uri so it can be logged or returned.
func redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "<unparsable uri>"
	}
	return u.Redacted()
}
