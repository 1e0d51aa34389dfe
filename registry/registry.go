// Package registry holds the immutable fee table: which assets settle the
// membership fee and the exact amount each one requires.
package registry

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/ikeenlabs/gatepass/types"
)

// Registry is the fee table. Configured once at construction, read-only after.
type Registry struct {
	order   []types.AcceptedAsset
	amounts map[common.Address]*big.Int
}

// New validates and freezes the fee table. A zero fee is rejected unless
// allowZero marks the deployment as intentionally carrying free entries.
func New(assets []types.AcceptedAsset, allowZero bool) (*Registry, error) {
	if len(assets) == 0 {
		return nil, &types.GateError{
			Code:    types.ErrConfiguration,
			Message: "no accepted assets configured",
		}
	}

	r := &Registry{
		order:   make([]types.AcceptedAsset, 0, len(assets)),
		amounts: make(map[common.Address]*big.Int, len(assets)),
	}

	for _, a := range assets {
		if _, dup := r.amounts[a.Token]; dup {
			return nil, &types.GateError{
				Code:    types.ErrConfiguration,
				Message: fmt.Sprintf("duplicate asset %s", a.Token.Hex()),
			}
		}
		if a.Amount == nil || a.Amount.Sign() < 0 {
			return nil, &types.GateError{
				Code:    types.ErrConfiguration,
				Message: fmt.Sprintf("invalid fee amount for asset %s", a.Token.Hex()),
			}
		}
		if a.Amount.Sign() == 0 && !allowZero {
			return nil, &types.GateError{
				Code:    types.ErrConfiguration,
				Message: fmt.Sprintf("zero fee for asset %s without AllowZeroFee", a.Token.Hex()),
			}
		}

		amount := new(big.Int).Set(a.Amount)
		r.amounts[a.Token] = amount
		r.order = append(r.order, types.AcceptedAsset{Token: a.Token, Amount: amount})
	}

	return r, nil
}

// Lookup returns the required fee for an asset. Pure.
func (r *Registry) Lookup(asset common.Address) (*big.Int, error) {
	amount, ok := r.amounts[asset]
	if !ok {
		return nil, &types.GateError{
			Code:    types.ErrUnsupportedAsset,
			Message: fmt.Sprintf("asset %s is not accepted", asset.Hex()),
		}
	}
	return new(big.Int).Set(amount), nil
}

func (r *Registry) IsSupported(asset common.Address) bool {
	_, ok := r.amounts[asset]
	return ok
}

// Assets returns the fee table in configuration order.
func (r *Registry) Assets() []types.AcceptedAsset {
	out := make([]types.AcceptedAsset, len(r.order))
	for i, a := range r.order {
		out[i] = types.AcceptedAsset{Token: a.Token, Amount: new(big.Int).Set(a.Amount)}
	}
	return out
}

// AmountDecimal renders an asset's fee in human units given its decimals.
func (r *Registry) AmountDecimal(asset common.Address, decimals int32) (decimal.Decimal, error) {
	amount, err := r.Lookup(asset)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromBigInt(amount, -decimals), nil
}
