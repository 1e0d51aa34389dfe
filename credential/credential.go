// Package credential mints the membership credential and enforces its
// non-transferability. Ids are sequential from zero. Once minted, ownership
// never changes: every transfer surface fails unconditionally, with no
// exception for the holder, the issuer, or an approved operator.
package credential

import (
	"fmt"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ikeenlabs/gatepass/types"
)

// Issuer is safe for concurrent use.
type Issuer struct {
	mu     sync.Mutex
	nextID uint64
	owners map[uint64]common.Address
	held   map[common.Address]uint64
}

func New() *Issuer {
	return &Issuer{
		owners: make(map[uint64]common.Address),
		held:   make(map[common.Address]uint64),
	}
}

// Mint assigns the next credential id to an address. One credential per
// address; the membership ledger is the primary guard, this check is the
// defensive second one.
func (i *Issuer) Mint(to common.Address) (uint64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.held[to]; ok {
		return 0, &types.GateError{
			Code:    types.ErrAlreadyHoldsCredential,
			Message: fmt.Sprintf("%s already holds a credential", to.Hex()),
		}
	}
	if i.nextID == math.MaxUint64 {
		panic("credential id space exhausted")
	}

	id := i.nextID
	i.nextID++
	i.owners[id] = to
	i.held[to] = id
	return id, nil
}

// OwnerOf resolves a credential to its holder.
func (i *Issuer) OwnerOf(id uint64) (common.Address, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	owner, ok := i.owners[id]
	if !ok {
		return common.Address{}, &types.GateError{
			Code:    types.ErrNoPurchase,
			Message: fmt.Sprintf("credential %d does not exist", id),
		}
	}
	return owner, nil
}

// BalanceOf reports 0 or 1.
func (i *Issuer) BalanceOf(owner common.Address) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.held[owner]; ok {
		return 1
	}
	return 0
}

// HeldBy returns the credential id owned by an address, if any.
func (i *Issuer) HeldBy(owner common.Address) (uint64, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	id, ok := i.held[owner]
	return id, ok
}

// TotalMinted reports how many credentials have been issued.
func (i *Issuer) TotalMinted() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.nextID
}

// TransferFrom always fails: the credential is non-transferable.
func (i *Issuer) TransferFrom(caller, from, to common.Address, id uint64) error {
	return transferDisabled()
}

// SafeTransferFrom always fails: the credential is non-transferable.
func (i *Issuer) SafeTransferFrom(caller, from, to common.Address, id uint64) error {
	return transferDisabled()
}

// Approve always fails: there is nothing an approval could ever move.
func (i *Issuer) Approve(caller, spender common.Address, id uint64) error {
	return transferDisabled()
}

// SetApprovalForAll always fails: there is nothing an operator could ever move.
func (i *Issuer) SetApprovalForAll(caller, operator common.Address, approved bool) error {
	return transferDisabled()
}

func transferDisabled() *types.GateError {
	return &types.GateError{
		Code:    types.ErrTransferDisabled,
		Message: "membership credentials are non-transferable",
	}
}
