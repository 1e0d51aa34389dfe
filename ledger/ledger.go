// Package ledger tracks membership purchases, one record per payer at most.
// It is the serialization point for the whole gate: a purchase is checkpointed
// as pending before any external transfer runs, so a collaborator calling back
// into the gate observes the spot as taken and cannot double-issue.
package ledger

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ikeenlabs/gatepass/types"
)

// Ledger is safe for concurrent use.
type Ledger struct {
	mu        sync.Mutex
	purchases map[common.Address]types.Purchase
	pending   map[common.Address]struct{}
}

func New() *Ledger {
	return &Ledger{
		purchases: make(map[common.Address]types.Purchase),
		pending:   make(map[common.Address]struct{}),
	}
}

// Begin checkpoints a purchase for payer. It fails with ALREADY_PURCHASED if
// a record exists or another purchase for the same payer is in flight. Every
// Begin must be paired with exactly one Commit or Abort.
func (l *Ledger) Begin(payer common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.purchases[payer]; ok {
		return alreadyPurchased(payer)
	}
	if _, ok := l.pending[payer]; ok {
		return alreadyPurchased(payer)
	}
	l.pending[payer] = struct{}{}
	return nil
}

// Commit finalizes the pending purchase for rec.Payer.
func (l *Ledger) Commit(rec types.Purchase) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.pending[rec.Payer]; !ok {
		return &types.GateError{
			Code:    types.ErrNoPurchase,
			Message: fmt.Sprintf("no pending purchase to commit for %s", rec.Payer.Hex()),
		}
	}
	delete(l.pending, rec.Payer)

	stored := rec
	if rec.Amount != nil {
		stored.Amount = new(big.Int).Set(rec.Amount)
	}
	l.purchases[rec.Payer] = stored
	return nil
}

// Abort rolls back a pending purchase. Safe to call when nothing is pending.
func (l *Ledger) Abort(payer common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, payer)
}

func (l *Ledger) HasPurchased(payer common.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.purchases[payer]
	return ok
}

// PurchaseOf returns the purchase record for payer.
func (l *Ledger) PurchaseOf(payer common.Address) (types.Purchase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.purchases[payer]
	if !ok {
		return types.Purchase{}, noPurchase(payer)
	}
	out := rec
	if rec.Amount != nil {
		out.Amount = new(big.Int).Set(rec.Amount)
	}
	return out, nil
}

// Clear removes payer's record, re-opening the spot. Used by the refund path
// only; its existence check doubles as the double-refund guard.
func (l *Ledger) Clear(payer common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.purchases[payer]; !ok {
		return noPurchase(payer)
	}
	delete(l.purchases, payer)
	return nil
}

// Count reports the number of committed purchases.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.purchases)
}

func alreadyPurchased(payer common.Address) *types.GateError {
	return &types.GateError{
		Code:    types.ErrAlreadyPurchased,
		Message: fmt.Sprintf("%s already purchased a spot", payer.Hex()),
	}
}

func noPurchase(payer common.Address) *types.GateError {
	return &types.GateError{
		Code:    types.ErrNoPurchase,
		Message: fmt.Sprintf("no purchase recorded for %s", payer.Hex()),
	}
}
