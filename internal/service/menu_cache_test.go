package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/platemenu/platemenu/internal/service"
)

func TestInMemoryMenuCacheStore(t *testing.T) {
	ctx := context.Background()
	store := service.NewInMemoryMenuCacheStore()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "menu-1", []byte(`{"name":"Diner"}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	payload, ok, err := store.Get(ctx, "menu-1")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(payload, []byte(`{"name":"Diner"}`)) {
		t.Fatalf("unexpected payload %q", payload)
	}

	if err := store.Invalidate(ctx, "menu-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "menu-1"); ok {
		t.Fatal("expected miss after invalidate")
	}

	if err := store.Set(ctx, "menu-2", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "menu-2"); ok {
		t.Fatal("expected entry to expire")
	}

	// Zero TTL entries are never stored.
	if err := store.Set(ctx, "menu-3", []byte("x"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "menu-3"); ok {
		t.Fatal("expected zero-ttl entry to be dropped")
	}
}

func TestRedisMenuCacheStore(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := service.NewRedisMenuCacheStore(client, "")

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "menu-1", []byte(`{"name":"Diner"}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !srv.Exists("public_menu:menu-1") {
		t.Fatal("expected prefixed key in redis")
	}
	payload, ok, err := store.Get(ctx, "menu-1")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(payload, []byte(`{"name":"Diner"}`)) {
		t.Fatalf("unexpected payload %q", payload)
	}

	srv.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "menu-1"); ok {
		t.Fatal("expected entry to expire")
	}

	if err := store.Set(ctx, "menu-2", []byte("x"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Invalidate(ctx, "menu-2"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "menu-2"); ok {
		t.Fatal("expected miss after invalidate")
	}
}
