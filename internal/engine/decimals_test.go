package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/YeahNotSewerSide/Swap/internal/cache"
	"github.com/YeahNotSewerSide/Swap/internal/id"
)

func newTestMetaStore(t *testing.T) *cache.Store {
	t.Helper()
	dir := t.TempDir()
	store, err := cache.Open(filepath.Join(dir, "meta.db"), filepath.Join(dir, "meta.lock"))
	if err != nil {
		t.Fatalf("open metadata store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestTokenDecimalsCacheServesRepeatReads(t *testing.T) {
	f := newFakeWallet(1)
	f.handle("decimals", func(args []any) ([]byte, error) {
		return packOutputs(t, erc20ABI, "decimals", uint8(6)), nil
	})
	session := newTestSession(t, f)
	store := newTestMetaStore(t)

	if got := TokenDecimals(context.Background(), session, 1, testTokenA, store); got != 6 {
		t.Fatalf("first read returned %d, want 6", got)
	}
	calls := f.callCount
	if calls == 0 {
		t.Fatal("first read should query the token contract")
	}
	if got := TokenDecimals(context.Background(), session, 1, testTokenA, store); got != 6 {
		t.Fatalf("second read returned %d, want 6", got)
	}
	if f.callCount != calls {
		t.Fatalf("second read issued %d extra RPC calls, want the cached value", f.callCount-calls)
	}
}

func TestTokenDecimalsNilStoreReadsEveryTime(t *testing.T) {
	f := newFakeWallet(1)
	f.handle("decimals", func(args []any) ([]byte, error) {
		return packOutputs(t, erc20ABI, "decimals", uint8(9)), nil
	})
	session := newTestSession(t, f)

	_ = TokenDecimals(context.Background(), session, 1, testTokenA, nil)
	_ = TokenDecimals(context.Background(), session, 1, testTokenA, nil)
	if f.callCount != 2 {
		t.Fatalf("expected 2 RPC reads without a store, got %d", f.callCount)
	}
}

func TestTokenDecimalsFallsBackToDefaultWithoutCaching(t *testing.T) {
	f := newFakeWallet(1)
	session := newTestSession(t, f)
	store := newTestMetaStore(t)

	if got := TokenDecimals(context.Background(), session, 1, testTokenA, store); got != id.DefaultDecimals {
		t.Fatalf("unanswered decimals() returned %d, want fallback %d", got, id.DefaultDecimals)
	}

	// The fallback must not poison the cache: once the token answers, its
	// real exponent is served.
	f.handle("decimals", func(args []any) ([]byte, error) {
		return packOutputs(t, erc20ABI, "decimals", uint8(6)), nil
	})
	if got := TokenDecimals(context.Background(), session, 1, testTokenA, store); got != 6 {
		t.Fatalf("recovered read returned %d, want 6", got)
	}
}

func TestTokenDecimalsCacheIsPerChain(t *testing.T) {
	f := newFakeWallet(1)
	f.handle("decimals", func(args []any) ([]byte, error) {
		return packOutputs(t, erc20ABI, "decimals", uint8(6)), nil
	})
	session := newTestSession(t, f)
	store := newTestMetaStore(t)

	_ = TokenDecimals(context.Background(), session, 1, testTokenA, store)
	calls := f.callCount
	_ = TokenDecimals(context.Background(), session, 2, testTokenA, store)
	if f.callCount == calls {
		t.Fatal("a different chain id must not reuse the cached value")
	}
}
