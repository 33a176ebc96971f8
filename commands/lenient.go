package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AAVision/learn-redis/internal/logger"
)

// Option configures a Lenient.
type Option func(*Lenient)

// WithLogger sets the logger swallowed errors are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Lenient) { c.logger = l }
}

// Lenient exposes the string and hash commands with failures replaced by a
// zero value: "" for strings, 0 for numbers and []string{""} for MGET.
// A missing key and a broken connection look the same to the caller; the
// error is only visible in the log.
type Lenient struct {
	strings *Strings
	hashes  *Hashes
	logger  *slog.Logger
}

func NewLenient(strings *Strings, hashes *Hashes, opts ...Option) *Lenient {
	c := &Lenient{
		strings: strings,
		hashes:  hashes,
		logger:  logger.Named("commands"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Lenient) swallow(cmd, key string, err error) {
	if errors.Is(err, ErrKeyNotFound) {
		c.logger.Debug("nil reply replaced with default", "cmd", cmd, "key", key)
		return
	}
	c.logger.Warn("command failed, returning default", "cmd", cmd, "key", key, "error", err)
}

// Set returns 1 once the value is stored and 0 otherwise.
func (c *Lenient) Set(ctx context.Context, key, value string) int {
	if err := c.strings.Set(ctx, key, value); err != nil {
		c.swallow("SET", key, err)
		return 0
	}
	return 1
}

func (c *Lenient) Get(ctx context.Context, key string) string {
	v, err := c.strings.Get(ctx, key)
	if err != nil {
		c.swallow("GET", key, err)
		return ""
	}
	return v
}

func (c *Lenient) Del(ctx context.Context, key string) int64 {
	n, err := c.strings.Del(ctx, key)
	if err != nil {
		c.swallow("DEL", key, err)
		return 0
	}
	return n
}

func (c *Lenient) GetRange(ctx context.Context, key string, start, end int64) string {
	v, err := c.strings.GetRange(ctx, key, start, end)
	if err != nil {
		c.swallow("GETRANGE", key, err)
		return ""
	}
	return v
}

func (c *Lenient) GetSet(ctx context.Context, key, value string) string {
	v, err := c.strings.GetSet(ctx, key, value)
	if err != nil {
		c.swallow("GETSET", key, err)
		return ""
	}
	return v
}

func (c *Lenient) GetBit(ctx context.Context, key string, offset int64) int64 {
	v, err := c.strings.GetBit(ctx, key, offset)
	if err != nil {
		c.swallow("GETBIT", key, err)
		return 0
	}
	return v
}

func (c *Lenient) SetBit(ctx context.Context, key string, offset int64, bit int) int64 {
	v, err := c.strings.SetBit(ctx, key, offset, bit)
	if err != nil {
		c.swallow("SETBIT", key, err)
		return 0
	}
	return v
}

// MGet returns one string per key with missing keys as "". On failure it
// returns the single placeholder []string{""} regardless of len(keys).
func (c *Lenient) MGet(ctx context.Context, keys ...string) []string {
	values, err := c.strings.MGet(ctx, keys...)
	if err != nil {
		first := ""
		if len(keys) > 0 {
			first = keys[0]
		}
		c.swallow("MGET", first, err)
		return []string{""}
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String
	}
	return out
}

func (c *Lenient) HSet(ctx context.Context, key string, fieldValues ...string) int64 {
	n, err := c.hashes.HSet(ctx, key, fieldValues...)
	if err != nil {
		c.swallow("HSET", key, err)
		return 0
	}
	return n
}

func (c *Lenient) HGet(ctx context.Context, key, field string) string {
	v, err := c.hashes.HGet(ctx, key, field)
	if err != nil {
		c.swallow("HGET", key, err)
		return ""
	}
	return v
}
