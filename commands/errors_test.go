package commands

import (
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, wrap("GET", nil))
	assert.Equal(t, ErrKeyNotFound, wrap("GET", redis.Nil))

	cause := errors.New("i/o timeout")
	err := wrap("HGET", cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrWrongType)
	assert.Equal(t, "HGET: i/o timeout", err.Error())
}

func TestInvalidArgument(t *testing.T) {
	err := invalidArgument("bit must be 0 or 1, got %d", 3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "invalid argument: bit must be 0 or 1, got 3", err.Error())
}
