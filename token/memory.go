package token

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrZeroAddress           = errors.New("transfer to the zero address")
)

// Memory is an in-process fungible asset used by tests and the demo binary.
// One Memory is the asset itself; Bound produces per-account handles that
// satisfy the ERC20 interface.
type Memory struct {
	mu        sync.Mutex
	symbol    string
	balances  map[common.Address]*big.Int
	allowance map[common.Address]map[common.Address]*big.Int
}

func NewMemory(symbol string) *Memory {
	return &Memory{
		symbol:    symbol,
		balances:  make(map[common.Address]*big.Int),
		allowance: make(map[common.Address]map[common.Address]*big.Int),
	}
}

func (m *Memory) Symbol() string { return m.symbol }

// Mint credits freshly created units to an account. Test and demo helper.
func (m *Memory) Mint(to common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credit(to, amount)
}

// Balance reads an account balance without a handle.
func (m *Memory) Balance(owner common.Address) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.balance(owner))
}

// Bound returns an ERC20 handle acting from the given account.
func (m *Memory) Bound(actor common.Address) *Handle {
	return &Handle{asset: m, actor: actor}
}

func (m *Memory) balance(owner common.Address) *big.Int {
	if b, ok := m.balances[owner]; ok {
		return b
	}
	return big.NewInt(0)
}

func (m *Memory) credit(to common.Address, amount *big.Int) {
	m.balances[to] = new(big.Int).Add(m.balance(to), amount)
}

func (m *Memory) move(from, to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	bal := m.balance(from)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	m.balances[from] = new(big.Int).Sub(bal, amount)
	m.credit(to, amount)
	return nil
}

func (m *Memory) allowanceOf(owner, spender common.Address) *big.Int {
	if byOwner, ok := m.allowance[owner]; ok {
		if a, ok := byOwner[spender]; ok {
			return a
		}
	}
	return big.NewInt(0)
}

// Handle is a Memory asset bound to an acting account.
type Handle struct {
	asset *Memory
	actor common.Address
}

func (h *Handle) Transfer(_ context.Context, to common.Address, amount *big.Int) error {
	h.asset.mu.Lock()
	defer h.asset.mu.Unlock()
	return h.asset.move(h.actor, to, amount)
}

func (h *Handle) TransferFrom(_ context.Context, from, to common.Address, amount *big.Int) error {
	h.asset.mu.Lock()
	defer h.asset.mu.Unlock()

	allowed := h.asset.allowanceOf(from, h.actor)
	if allowed.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := h.asset.move(from, to, amount); err != nil {
		return err
	}
	byOwner, ok := h.asset.allowance[from]
	if !ok {
		byOwner = make(map[common.Address]*big.Int)
		h.asset.allowance[from] = byOwner
	}
	byOwner[h.actor] = new(big.Int).Sub(allowed, amount)
	return nil
}

func (h *Handle) Approve(_ context.Context, spender common.Address, amount *big.Int) error {
	h.asset.mu.Lock()
	defer h.asset.mu.Unlock()

	byOwner, ok := h.asset.allowance[h.actor]
	if !ok {
		byOwner = make(map[common.Address]*big.Int)
		h.asset.allowance[h.actor] = byOwner
	}
	byOwner[spender] = new(big.Int).Set(amount)
	return nil
}

func (h *Handle) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	h.asset.mu.Lock()
	defer h.asset.mu.Unlock()
	return new(big.Int).Set(h.asset.balance(owner)), nil
}

// WrappedMemory models the wrap service over an in-process asset. Deposits
// mint wrapped units against native value the caller is assumed to have sent;
// withdrawals burn them.
type WrappedMemory struct {
	*Memory
}

func NewWrappedMemory(symbol string) *WrappedMemory {
	return &WrappedMemory{Memory: NewMemory(symbol)}
}

// Bound returns a WrappedNative handle acting from the given account.
func (w *WrappedMemory) Bound(actor common.Address) *WrappedHandle {
	return &WrappedHandle{Handle: w.Memory.Bound(actor)}
}

type WrappedHandle struct {
	*Handle
}

func (h *WrappedHandle) Deposit(_ context.Context, amount *big.Int) error {
	h.asset.mu.Lock()
	defer h.asset.mu.Unlock()
	h.asset.credit(h.actor, amount)
	return nil
}

func (h *WrappedHandle) Withdraw(_ context.Context, amount *big.Int) error {
	h.asset.mu.Lock()
	defer h.asset.mu.Unlock()

	bal := h.asset.balance(h.actor)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	h.asset.balances[h.actor] = new(big.Int).Sub(bal, amount)
	return nil
}
