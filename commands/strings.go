package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NoExpiry is returned by TTL for a key that exists without a timeout.
const NoExpiry time.Duration = -1

// StringCmdable is the part of a go-redis connection Strings needs.
// *redis.Conn, *redis.Client and connection.Conn all satisfy it.
type StringCmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	GetRange(ctx context.Context, key string, start, end int64) *redis.StringCmd
	GetSet(ctx context.Context, key string, value interface{}) *redis.StringCmd
	GetBit(ctx context.Context, key string, offset int64) *redis.IntCmd
	SetBit(ctx context.Context, key string, offset int64, value int) *redis.IntCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// Strings issues string commands over one connection.
type Strings struct {
	con StringCmdable
}

func NewStrings(con StringCmdable) *Strings {
	return &Strings{con: con}
}

// NullString is one MGET slot. Valid is false when the key was absent.
type NullString struct {
	String string
	Valid  bool
}

// Set stores value at key, dropping any previous TTL.
func (s *Strings) Set(ctx context.Context, key, value string) error {
	return wrap("SET", s.con.Set(ctx, key, value, 0).Err())
}

// SetEx stores value at key with a TTL of at least one second.
func (s *Strings) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return invalidArgument("ttl must be positive, got %s", ttl)
	}
	return wrap("SETEX", s.con.SetEx(ctx, key, value, ttl).Err())
}

// Get returns the string at key, or ErrKeyNotFound.
func (s *Strings) Get(ctx context.Context, key string) (string, error) {
	v, err := s.con.Get(ctx, key).Result()
	if err != nil {
		return "", wrap("GET", err)
	}
	return v, nil
}

// Del removes keys and returns how many existed.
func (s *Strings) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, invalidArgument("DEL needs at least one key")
	}
	n, err := s.con.Del(ctx, keys...).Result()
	if err != nil {
		return 0, wrap("DEL", err)
	}
	return n, nil
}

// GetRange returns the substring between start and end, both inclusive.
// Negative offsets count from the end, so (0, -1) is the whole value.
// A missing key reads as "".
func (s *Strings) GetRange(ctx context.Context, key string, start, end int64) (string, error) {
	v, err := s.con.GetRange(ctx, key, start, end).Result()
	if err != nil {
		return "", wrap("GETRANGE", err)
	}
	return v, nil
}

// GetSet stores value and returns the previous one. When the key did not
// exist the new value is still stored and ErrKeyNotFound is returned.
func (s *Strings) GetSet(ctx context.Context, key, value string) (string, error) {
	old, err := s.con.GetSet(ctx, key, value).Result()
	if err != nil {
		return "", wrap("GETSET", err)
	}
	return old, nil
}

// GetBit returns the bit at offset. Offsets past the end read as 0.
func (s *Strings) GetBit(ctx context.Context, key string, offset int64) (int64, error) {
	if offset < 0 {
		return 0, invalidArgument("bit offset must not be negative, got %d", offset)
	}
	v, err := s.con.GetBit(ctx, key, offset).Result()
	if err != nil {
		return 0, wrap("GETBIT", err)
	}
	return v, nil
}

// SetBit sets the bit at offset to 0 or 1 and returns its previous value.
func (s *Strings) SetBit(ctx context.Context, key string, offset int64, bit int) (int64, error) {
	if offset < 0 {
		return 0, invalidArgument("bit offset must not be negative, got %d", offset)
	}
	if bit != 0 && bit != 1 {
		return 0, invalidArgument("bit must be 0 or 1, got %d", bit)
	}
	v, err := s.con.SetBit(ctx, key, offset, bit).Result()
	if err != nil {
		return 0, wrap("SETBIT", err)
	}
	return v, nil
}

// MGet returns one slot per key, in order.
func (s *Strings) MGet(ctx context.Context, keys ...string) ([]NullString, error) {
	if len(keys) == 0 {
		return nil, invalidArgument("MGET needs at least one key")
	}
	replies, err := s.con.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, wrap("MGET", err)
	}
	if len(replies) != len(keys) {
		return nil, fmt.Errorf("MGET: %w: %d replies for %d keys", ErrInvalidType, len(replies), len(keys))
	}
	values := make([]NullString, len(replies))
	for i, r := range replies {
		switch v := r.(type) {
		case nil:
		case string:
			values[i] = NullString{String: v, Valid: true}
		default:
			return nil, fmt.Errorf("MGET: %w: %T for key %q", ErrInvalidType, r, keys[i])
		}
	}
	return values, nil
}

// Expire sets a TTL on key and reports whether the key existed.
func (s *Strings) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, invalidArgument("ttl must be positive, got %s", ttl)
	}
	ok, err := s.con.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, wrap("EXPIRE", err)
	}
	return ok, nil
}

// TTL returns the remaining lifetime of key, NoExpiry for a persistent key
// and ErrKeyNotFound for a missing one.
func (s *Strings) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.con.TTL(ctx, key).Result()
	if err != nil {
		return 0, wrap("TTL", err)
	}
	switch d {
	case -2:
		return 0, ErrKeyNotFound
	case -1:
		return NoExpiry, nil
	}
	return d, nil
}
