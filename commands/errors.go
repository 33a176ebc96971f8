package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrKeyNotFound reports a nil reply: the key (or hash field) is absent.
	ErrKeyNotFound = errors.New("key not found")
	// ErrWrongType reports a WRONGTYPE reply from the server.
	ErrWrongType = errors.New("operation against a key holding the wrong kind of value")
	// ErrInvalidType reports a reply that could not be decoded.
	ErrInvalidType = errors.New("invalid type")
	// ErrInvalidArgument is returned before anything is sent.
	ErrInvalidArgument = errors.New("invalid argument")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// wrap maps a go-redis error for cmd onto the package sentinels while
// keeping the original error in the chain.
func wrap(cmd string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return ErrKeyNotFound
	}
	var rerr redis.Error
	if errors.As(err, &rerr) && strings.HasPrefix(rerr.Error(), "WRONGTYPE") {
		return fmt.Errorf("%s: %w: %w", cmd, ErrWrongType, err)
	}
	return fmt.Errorf("%s: %w", cmd, err)
}
