package repository

import (
	"context"
	"testing"
	"time"
)

func newTestSessionStore(t *testing.T) *BadgerSessionStore {
	t.Helper()

	store, err := NewInMemorySessionStore()
	if err != nil {
		t.Fatalf("NewInMemorySessionStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// TestBadgerSessionStore_PutGet は保存した値がTTL内で取得できることを検証する。
func TestBadgerSessionStore_PutGet(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "auth_token-1", "user-1", time.Hour); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, "auth_token-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "user-1" {
		t.Errorf("Get() = %q, want %q", got, "user-1")
	}
}

// TestBadgerSessionStore_GetMissing は不在キーが空文字列を返すことを検証する。
func TestBadgerSessionStore_GetMissing(t *testing.T) {
	store := newTestSessionStore(t)

	got, err := store.Get(context.Background(), "auth_no-such-token")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "" {
		t.Errorf("Get() = %q, want empty string", got)
	}
}

// TestBadgerSessionStore_Expiry はTTL経過後のキーが不在と同じ結果になることを検証する。
func TestBadgerSessionStore_Expiry(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "auth_short", "user-1", 50*time.Millisecond); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	got, err := store.Get(ctx, "auth_short")
	if err != nil {
		t.Fatalf("Get() after expiry error = %v", err)
	}
	if got != "" {
		t.Errorf("Get() after expiry = %q, want empty string", got)
	}
}

// TestBadgerSessionStore_Delete は削除済みキーが不在と同じ結果になることを検証する。
func TestBadgerSessionStore_Delete(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "auth_gone", "user-1", time.Hour); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete(ctx, "auth_gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := store.Get(ctx, "auth_gone")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if got != "" {
		t.Errorf("Get() after delete = %q, want empty string", got)
	}

	// 不在キーの削除はエラーにならない
	if err := store.Delete(ctx, "auth_gone"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

// TestBadgerSessionStore_Alive はClose前後のAliveの遷移を検証する。
func TestBadgerSessionStore_Alive(t *testing.T) {
	store, err := NewInMemorySessionStore()
	if err != nil {
		t.Fatalf("NewInMemorySessionStore() error = %v", err)
	}

	if !store.Alive() {
		t.Error("Alive() = false before Close, want true")
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if store.Alive() {
		t.Error("Alive() = true after Close, want false")
	}
}
