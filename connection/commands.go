package connection

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func (c *Conn) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return c.conn.Set(ctx, key, value, expiration)
}

func (c *Conn) SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return c.conn.SetEx(ctx, key, value, expiration)
}

func (c *Conn) Get(ctx context.Context, key string) *redis.StringCmd {
	return c.conn.Get(ctx, key)
}

func (c *Conn) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return c.conn.Del(ctx, keys...)
}

func (c *Conn) GetRange(ctx context.Context, key string, start, end int64) *redis.StringCmd {
	return c.conn.GetRange(ctx, key, start, end)
}

func (c *Conn) GetSet(ctx context.Context, key string, value interface{}) *redis.StringCmd {
	return c.conn.GetSet(ctx, key, value)
}

func (c *Conn) GetBit(ctx context.Context, key string, offset int64) *redis.IntCmd {
	return c.conn.GetBit(ctx, key, offset)
}

func (c *Conn) SetBit(ctx context.Context, key string, offset int64, value int) *redis.IntCmd {
	return c.conn.SetBit(ctx, key, offset, value)
}

func (c *Conn) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	return c.conn.MGet(ctx, keys...)
}

func (c *Conn) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return c.conn.Expire(ctx, key, expiration)
}

func (c *Conn) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return c.conn.TTL(ctx, key)
}

func (c *Conn) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	return c.conn.HSet(ctx, key, values...)
}

func (c *Conn) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	return c.conn.HGet(ctx, key, field)
}

func (c *Conn) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	return c.conn.HGetAll(ctx, key)
}

func (c *Conn) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	return c.conn.HDel(ctx, key, fields...)
}
