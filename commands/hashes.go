package commands

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// HashCmdable is the part of a go-redis connection Hashes needs.
type HashCmdable interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
}

// Hashes issues hash commands over one connection. Hashes map string fields
// to string values, which makes them a natural fit for small objects.
type Hashes struct {
	con HashCmdable
}

func NewHashes(con HashCmdable) *Hashes {
	return &Hashes{con: con}
}

// HSet writes field/value pairs to the hash at key, creating it if needed,
// and returns the number of fields that were added rather than overwritten.
//
//	h.HSet(ctx, "hash-key", "key1", "value1", "key2", "value2")
func (h *Hashes) HSet(ctx context.Context, key string, fieldValues ...string) (int64, error) {
	if len(fieldValues) == 0 || len(fieldValues)%2 != 0 {
		return 0, invalidArgument("HSET needs field/value pairs, got %d arguments", len(fieldValues))
	}
	args := make([]interface{}, len(fieldValues))
	for i, v := range fieldValues {
		args[i] = v
	}
	n, err := h.con.HSet(ctx, key, args...).Result()
	if err != nil {
		return 0, wrap("HSET", err)
	}
	return n, nil
}

// HGet returns the value of field, or ErrKeyNotFound when either the hash
// or the field is missing.
func (h *Hashes) HGet(ctx context.Context, key, field string) (string, error) {
	v, err := h.con.HGet(ctx, key, field).Result()
	if err != nil {
		return "", wrap("HGET", err)
	}
	return v, nil
}

// HGetAll returns every field of the hash; a missing key is an empty map.
func (h *Hashes) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := h.con.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrap("HGETALL", err)
	}
	return m, nil
}

// HDel removes fields and returns how many existed.
func (h *Hashes) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, invalidArgument("HDEL needs at least one field")
	}
	n, err := h.con.HDel(ctx, key, fields...).Result()
	if err != nil {
		return 0, wrap("HDEL", err)
	}
	return n, nil
}
