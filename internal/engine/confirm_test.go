package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
)

func TestWaitMinedReturnsReceipt(t *testing.T) {
	f := newFakeWallet(1)
	hash := common.HexToHash("0x01")
	f.knownTx[hash] = true
	go func() {
		time.Sleep(5 * time.Millisecond)
		f.mu.Lock()
		f.receipts[hash] = receiptFor(hash)
		f.mu.Unlock()
	}()

	receipt, err := waitMined(context.Background(), f, hash, time.Millisecond)
	if err != nil {
		t.Fatalf("waitMined failed: %v", err)
	}
	if receipt.TxHash != hash {
		t.Fatalf("unexpected receipt hash: %s", receipt.TxHash)
	}
}

func TestWaitMinedDetectsDroppedTransaction(t *testing.T) {
	f := newFakeWallet(1)
	hash := common.HexToHash("0x02")
	// Never known, never mined.
	_, err := waitMined(context.Background(), f, hash, time.Millisecond)
	if !errors.Is(err, ErrTxDropped) {
		t.Fatalf("expected dropped transaction error, got %v", err)
	}
}

func TestWaitMinedAbandonOnContextCancel(t *testing.T) {
	f := newFakeWallet(1)
	hash := common.HexToHash("0x03")
	f.knownTx[hash] = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := waitMined(ctx, f, hash, time.Millisecond)
	typed, ok := clierr.As(err)
	if !ok || typed.Code != clierr.CodeTimeout {
		t.Fatalf("expected timeout error on abandoned wait, got %v", err)
	}
}
