package redis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/redis"
)

func TestNewClient_EmptyAddress(t *testing.T) {
	client, err := redis.NewClient(redis.Config{})
	if !errors.Is(err, redis.ErrEmptyAddress) {
		t.Fatalf("err = %v, want ErrEmptyAddress", err)
	}
	if client != nil {
		t.Error("expected nil client")
	}
}

func TestNewClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redis.NewClient(redis.Config{Address: mr.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.CheckGet(t, "k", "v")
}

func TestNewClient_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := redis.NewClient(redis.Config{Address: addr}); err == nil {
		t.Fatal("expected ping error against a closed server")
	}
}
