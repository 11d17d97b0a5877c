package cache

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "tokens.db"), filepath.Join(dir, "tokens.lock"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSetGet(t *testing.T) {
	store := openTestStore(t)
	key := DecimalsKey(28282, "0x00000000000000000000000000000000000000aa")

	if _, hit, err := store.Get(key); err != nil || hit {
		t.Fatalf("expected miss on empty store, hit=%v err=%v", hit, err)
	}
	if err := store.Set(key, []byte("6")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, hit, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit || string(value) != "6" {
		t.Fatalf("unexpected read: hit=%v value=%q", hit, value)
	}
}

func TestStoreOverwrite(t *testing.T) {
	store := openTestStore(t)
	key := DecimalsKey(1, "0x00000000000000000000000000000000000000bb")
	if err := store.Set(key, []byte("18")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(key, []byte("8")); err != nil {
		t.Fatalf("Set update failed: %v", err)
	}
	value, hit, err := store.Get(key)
	if err != nil || !hit {
		t.Fatalf("Get failed: hit=%v err=%v", hit, err)
	}
	if string(value) != "8" {
		t.Fatalf("expected overwritten value, got %q", value)
	}
}

func TestDecimalsKeyIsPerChain(t *testing.T) {
	token := "0x00000000000000000000000000000000000000cc"
	if DecimalsKey(1, token) == DecimalsKey(2, token) {
		t.Fatal("keys must differ per chain")
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	if _, hit, err := store.Get("k"); err != nil || hit {
		t.Fatalf("nil store Get should be a miss, hit=%v err=%v", hit, err)
	}
	if err := store.Set("k", []byte("v")); err != nil {
		t.Fatalf("nil store Set should be a no-op: %v", err)
	}
}
