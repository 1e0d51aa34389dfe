// Package refund reverses paid purchases when the deployment allows it. The
// credential itself is not burned: a refunded participant keeps the
// non-transferable credential while the ledger re-opens their spot.
package refund

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ikeenlabs/gatepass/credential"
	"github.com/ikeenlabs/gatepass/ledger"
	"github.com/ikeenlabs/gatepass/logger"
	"github.com/ikeenlabs/gatepass/token"
	"github.com/ikeenlabs/gatepass/types"
)

type Engine struct {
	enabled     bool
	ledger      *ledger.Ledger
	credentials *credential.Issuer
	tokens      map[common.Address]token.ERC20
	log         logger.Logger
}

func New(
	enabled bool,
	l *ledger.Ledger,
	c *credential.Issuer,
	tokens map[common.Address]token.ERC20,
	log logger.Logger,
) *Engine {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Engine{enabled: enabled, ledger: l, credentials: c, tokens: tokens, log: log}
}

func (e *Engine) Enabled() bool { return e.enabled }

// Refund returns exactly the amount paid, in the asset it was paid with, to
// the holder of the credential, then re-opens their spot. Administrative
// grants paid nothing and cannot be refunded.
//
// The record is cleared before the payout is issued, so an asset calling back
// in mid-transfer finds no purchase to refund; if the payout fails, the
// record is restored and the error surfaced, leaving the call all-or-nothing.
func (e *Engine) Refund(ctx context.Context, credentialID uint64) (types.Purchase, error) {
	if !e.enabled {
		return types.Purchase{}, &types.GateError{
			Code:    types.ErrRefundsDisabled,
			Message: "this deployment does not allow refunds",
		}
	}

	payer, err := e.credentials.OwnerOf(credentialID)
	if err != nil {
		return types.Purchase{}, err
	}

	rec, err := e.ledger.PurchaseOf(payer)
	if err != nil {
		return types.Purchase{}, err
	}
	if rec.Granted {
		return types.Purchase{}, &types.GateError{
			Code:    types.ErrNothingToRefund,
			Message: fmt.Sprintf("credential %d was granted, nothing was paid", credentialID),
		}
	}

	erc20, ok := e.tokens[rec.Asset]
	if !ok {
		return types.Purchase{}, &types.GateError{
			Code:    types.ErrUnsupportedAsset,
			Message: fmt.Sprintf("no transfer handle for asset %s", rec.Asset.Hex()),
		}
	}

	// checkpoint: release the record before any external call
	if err := e.ledger.Clear(payer); err != nil {
		return types.Purchase{}, err
	}

	if err := erc20.Transfer(ctx, payer, rec.Amount); err != nil {
		e.restore(rec)
		return types.Purchase{}, &types.GateError{
			Code:    types.ErrTransferFailed,
			Message: fmt.Sprintf("returning %s of %s to %s failed", rec.Amount, rec.Asset.Hex(), payer.Hex()),
			Err:     err,
		}
	}
	return rec, nil
}

// restore puts a cleared record back after a failed payout.
func (e *Engine) restore(rec types.Purchase) {
	if err := e.ledger.Begin(rec.Payer); err != nil {
		e.log.Error("purchase record lost after failed refund payout", map[string]any{
			"payer": rec.Payer.Hex(), "credential": rec.CredentialID, "error": err.Error(),
		})
		return
	}
	if err := e.ledger.Commit(rec); err != nil {
		e.log.Error("purchase record lost after failed refund payout", map[string]any{
			"payer": rec.Payer.Hex(), "credential": rec.CredentialID, "error": err.Error(),
		})
	}
}
