package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/AAVision/learn-redis/commands"
	"github.com/AAVision/learn-redis/config"
	"github.com/AAVision/learn-redis/connection"
	"github.com/AAVision/learn-redis/internal/logger"
)

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("GEDIS_CONFIG"), "path to a YAML config file")
	url := pflag.String("url", "", "redis URI, overrides the config file and "+config.EnvPrefix+"_REDIS_URL (default "+config.DefaultURL+")")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *url); err != nil {
		fmt.Println("Lesson failed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, url string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if url != "" {
		cfg.Redis.URL = url
	}

	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}); err != nil {
		return err
	}
	defer logger.Sync()

	conn, err := connection.Open(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer conn.Close()

	prefix := "lesson:" + uuid.NewString() + ":"
	strs := commands.NewStrings(conn)
	hashes := commands.NewHashes(conn)

	lessons := []struct {
		name string
		fn   func(context.Context, *commands.Strings, *commands.Hashes, string) error
	}{
		{"set, get and del", setGetDel},
		{"getrange", getRange},
		{"getset", getSet},
		{"bits", bits},
		{"mget", mget},
		{"hashes", hashSetGet},
	}
	for _, l := range lessons {
		fmt.Printf("== %s\n", l.name)
		if err := l.fn(ctx, strs, hashes, prefix); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}

	lenient := commands.NewLenient(strs, hashes)
	fmt.Printf("== lenient\nGET on a missing key: %q\n", lenient.Get(ctx, prefix+"missing"))

	keys := []string{prefix + "excellent-key", prefix + "key44", prefix + "bits", prefix + "a", prefix + "b", prefix + "hash-key"}
	if _, err := strs.Del(ctx, keys...); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	return nil
}

func setGetDel(ctx context.Context, strs *commands.Strings, _ *commands.Hashes, prefix string) error {
	key := prefix + "excellent-key"
	if err := strs.Set(ctx, key, "my-value"); err != nil {
		return err
	}
	value, err := strs.Get(ctx, key)
	if err != nil {
		return err
	}
	fmt.Println("GET:", value)

	if _, err := strs.Del(ctx, key); err != nil {
		return err
	}
	_, err = strs.Get(ctx, key)
	if !errors.Is(err, commands.ErrKeyNotFound) {
		return fmt.Errorf("expected key to be gone, got %v", err)
	}
	fmt.Println("GET after DEL: key not found")
	return nil
}

func getRange(ctx context.Context, strs *commands.Strings, _ *commands.Hashes, prefix string) error {
	key := prefix + "key44"
	if err := strs.Set(ctx, key, "this is me"); err != nil {
		return err
	}
	head, err := strs.GetRange(ctx, key, 0, 3)
	if err != nil {
		return err
	}
	all, err := strs.GetRange(ctx, key, 0, -1)
	if err != nil {
		return err
	}
	fmt.Printf("GETRANGE 0 3: %q, GETRANGE 0 -1: %q\n", head, all)
	return nil
}

func getSet(ctx context.Context, strs *commands.Strings, _ *commands.Hashes, prefix string) error {
	key := prefix + "key44"
	old, err := strs.GetSet(ctx, key, "this is set")
	if err != nil {
		return err
	}
	current, err := strs.Get(ctx, key)
	if err != nil {
		return err
	}
	fmt.Printf("GETSET returned %q, value is now %q\n", old, current)
	return nil
}

func bits(ctx context.Context, strs *commands.Strings, _ *commands.Hashes, prefix string) error {
	key := prefix + "bits"
	for _, offset := range []int64{1, 3, 5} {
		if _, err := strs.SetBit(ctx, key, offset, 1); err != nil {
			return err
		}
	}
	for offset := int64(0); offset < 8; offset++ {
		bit, err := strs.GetBit(ctx, key, offset)
		if err != nil {
			return err
		}
		fmt.Print(bit)
	}
	fmt.Println()
	return nil
}

func mget(ctx context.Context, strs *commands.Strings, _ *commands.Hashes, prefix string) error {
	if err := strs.Set(ctx, prefix+"a", "1"); err != nil {
		return err
	}
	values, err := strs.MGet(ctx, prefix+"a", prefix+"b")
	if err != nil {
		return err
	}
	for i, v := range values {
		if v.Valid {
			fmt.Printf("%d) %q\n", i+1, v.String)
		} else {
			fmt.Printf("%d) (nil)\n", i+1)
		}
	}
	return nil
}

func hashSetGet(ctx context.Context, _ *commands.Strings, hashes *commands.Hashes, prefix string) error {
	key := prefix + "hash-key"
	if _, err := hashes.HSet(ctx, key, "key1", "value1", "key2", "value2"); err != nil {
		return err
	}
	value, err := hashes.HGet(ctx, key, "key1")
	if err != nil {
		return err
	}
	fmt.Println("HGET key1:", value)
	return nil
}
