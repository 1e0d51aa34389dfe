// Package gatepass implements a membership gate: one non-transferable
// credential per participant, sold for an exact fee in one of several accepted
// fungible assets, with an implicit-deposit path for the native currency, an
// optional refund path, and issuer-only treasury administration.
package gatepass

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ikeenlabs/gatepass/credential"
	"github.com/ikeenlabs/gatepass/gateway"
	"github.com/ikeenlabs/gatepass/ledger"
	"github.com/ikeenlabs/gatepass/logger"
	"github.com/ikeenlabs/gatepass/metrics"
	"github.com/ikeenlabs/gatepass/refund"
	"github.com/ikeenlabs/gatepass/registry"
	"github.com/ikeenlabs/gatepass/token"
	"github.com/ikeenlabs/gatepass/treasury"
	"github.com/ikeenlabs/gatepass/types"
)

var validate = validator.New()

// Gate is the main entry point. It composes the fee registry, membership
// ledger, credential issuer, payment gateway, refund engine, and treasury
// operations behind one immutable configuration.
//
// The gate is safe for concurrent use. Atomicity per call rests on the
// ledger's pending checkpoint rather than a gate-wide lock, so a collaborator
// asset calling back into the gate mid-transfer fails cleanly instead of
// deadlocking.
type Gate struct {
	cfg         *types.Config
	registry    *registry.Registry
	ledger      *ledger.Ledger
	credentials *credential.Issuer
	gateway     *gateway.Gateway
	refunds     *refund.Engine
	treasury    *treasury.Ops

	logger  logger.Logger
	metrics metrics.Recorder
}

// New validates the configuration and wires a gate. The configuration is
// frozen from here on.
func New(cfg *types.Config, opts ...Option) (*Gate, error) {
	if cfg == nil {
		return nil, &types.GateError{
			Code:    types.ErrConfiguration,
			Message: "configuration is required",
		}
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, &types.GateError{
			Code:    types.ErrConfiguration,
			Message: fmt.Sprintf("validation failed: %v", err),
			Err:     err,
		}
	}

	reg, err := registry.New(cfg.Assets, cfg.AllowZeroFee)
	if err != nil {
		return nil, err
	}

	tokens := make(map[common.Address]token.ERC20, len(cfg.Tokens)+1)
	for asset, handle := range cfg.Tokens {
		tokens[asset] = handle
	}
	if cfg.Wrapped != nil && cfg.WrappedNative != (common.Address{}) {
		if _, ok := tokens[cfg.WrappedNative]; !ok {
			tokens[cfg.WrappedNative] = cfg.Wrapped
		}
	}
	for _, a := range reg.Assets() {
		if _, ok := tokens[a.Token]; !ok {
			return nil, &types.GateError{
				Code:    types.ErrConfiguration,
				Message: fmt.Sprintf("accepted asset %s has no transfer handle", a.Token.Hex()),
			}
		}
	}
	if cfg.WrappedNative != (common.Address{}) && cfg.Wrapped == nil {
		return nil, &types.GateError{
			Code:    types.ErrConfiguration,
			Message: "wrapped-native asset configured without a wrap service",
		}
	}

	led := ledger.New()
	creds := credential.New()

	g := &Gate{
		cfg:         cfg,
		registry:    reg,
		ledger:      led,
		credentials: creds,
		logger:      logger.NoopLogger{},
		metrics:     metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}

	g.refunds = refund.New(cfg.Refundable, led, creds, tokens, g.logger)
	g.treasury = treasury.New(cfg.Issuer, cfg.Custody, led, creds, tokens)
	g.gateway = gateway.New(gateway.Config{
		Registry:     reg,
		Ledger:       led,
		Credentials:  creds,
		Tokens:       tokens,
		Wrapped:      cfg.Wrapped,
		WrappedAsset: cfg.WrappedNative,
		Custody:      cfg.Custody,
		Logger:       g.logger,
	})
	return g, nil
}

// BuySpot purchases a membership spot for payer using an accepted asset.
func (g *Gate) BuySpot(ctx context.Context, payer, asset common.Address) (types.Purchase, error) {
	start := time.Now()
	rec, err := g.gateway.BuySpot(ctx, payer, asset)
	g.observe("buy_spot", asset.Hex(), start, err)
	if err != nil {
		g.logger.Warn("spot purchase rejected", map[string]any{
			"payer": payer.Hex(), "asset": asset.Hex(), "error": err.Error(),
		})
		return rec, err
	}
	g.logger.Info("spot purchased", map[string]any{
		"payer": payer.Hex(), "asset": asset.Hex(),
		"amount": rec.Amount.String(), "credential": rec.CredentialID,
	})
	return rec, nil
}

// OnNativeDeposit handles a bare transfer of native currency to the gate.
// The platform runtime calls it with the originating address and the value
// sent; on success the value is wrapped and treated exactly like a purchase
// paid in the wrapped-native asset.
func (g *Gate) OnNativeDeposit(ctx context.Context, sender common.Address, amount *big.Int) (types.Purchase, error) {
	start := time.Now()
	rec, err := g.gateway.OnNativeDeposit(ctx, sender, amount)
	g.observe("native_deposit", g.cfg.WrappedNative.Hex(), start, err)
	if err != nil {
		g.logger.Warn("native deposit rejected", map[string]any{
			"sender": sender.Hex(), "amount": bigString(amount), "error": err.Error(),
		})
		return rec, err
	}
	g.logger.Info("native deposit accepted", map[string]any{
		"sender": sender.Hex(), "amount": rec.Amount.String(), "credential": rec.CredentialID,
	})
	return rec, nil
}

// Refund reverses the purchase behind a credential, when the deployment
// allows refunds. The credential stays with its holder.
func (g *Gate) Refund(ctx context.Context, credentialID uint64) (types.Purchase, error) {
	start := time.Now()
	rec, err := g.refunds.Refund(ctx, credentialID)
	g.observe("refund", rec.Asset.Hex(), start, err)
	if err != nil {
		g.logger.Warn("refund rejected", map[string]any{
			"credential": credentialID, "error": err.Error(),
		})
		return rec, err
	}
	g.logger.Info("purchase refunded", map[string]any{
		"credential": credentialID, "payer": rec.Payer.Hex(), "amount": rec.Amount.String(),
	})
	return rec, nil
}

// AddWhitelist grants a free spot. Issuer only; never refundable.
func (g *Gate) AddWhitelist(ctx context.Context, caller, to common.Address) (types.Purchase, error) {
	start := time.Now()
	rec, err := g.treasury.Grant(ctx, caller, to)
	g.observe("grant", "", start, err)
	if err != nil {
		g.logger.Warn("grant rejected", map[string]any{
			"caller": caller.Hex(), "to": to.Hex(), "error": err.Error(),
		})
		return rec, err
	}
	g.logger.Info("spot granted", map[string]any{
		"to": to.Hex(), "credential": rec.CredentialID,
	})
	return rec, nil
}

// Withdraw sweeps the custody balance of one asset to the issuer. Issuer only.
func (g *Gate) Withdraw(ctx context.Context, caller, asset common.Address) (*big.Int, error) {
	start := time.Now()
	moved, err := g.treasury.Withdraw(ctx, caller, asset)
	g.observe("withdraw", asset.Hex(), start, err)
	if err != nil {
		g.logger.Warn("withdrawal rejected", map[string]any{
			"caller": caller.Hex(), "asset": asset.Hex(), "error": err.Error(),
		})
		return nil, err
	}
	g.logger.Info("treasury withdrawal", map[string]any{
		"asset": asset.Hex(), "amount": moved.String(),
	})
	return moved, nil
}

// Read surface.

func (g *Gate) HasPurchased(payer common.Address) bool {
	return g.ledger.HasPurchased(payer)
}

func (g *Gate) PurchaseOf(payer common.Address) (types.Purchase, error) {
	return g.ledger.PurchaseOf(payer)
}

func (g *Gate) OwnerOf(credentialID uint64) (common.Address, error) {
	return g.credentials.OwnerOf(credentialID)
}

// BalanceOf reports how many credentials an address holds: 0 or 1.
func (g *Gate) BalanceOf(owner common.Address) int {
	return g.credentials.BalanceOf(owner)
}

// TransferCredential exists so callers discover non-transferability the same
// way they would on any token surface: it always fails.
func (g *Gate) TransferCredential(caller, from, to common.Address, credentialID uint64) error {
	return g.credentials.TransferFrom(caller, from, to, credentialID)
}

func (g *Gate) IsSupported(asset common.Address) bool {
	return g.registry.IsSupported(asset)
}

// FeeFor returns the configured fee for an asset in its smallest unit.
func (g *Gate) FeeFor(asset common.Address) (*big.Int, error) {
	return g.registry.Lookup(asset)
}

// FeeDecimal renders an asset's fee in human units given its decimals.
func (g *Gate) FeeDecimal(asset common.Address, decimals int32) (decimal.Decimal, error) {
	return g.registry.AmountDecimal(asset, decimals)
}

// Assets returns the accepted fee table in configuration order.
func (g *Gate) Assets() []types.AcceptedAsset {
	return g.registry.Assets()
}

func (g *Gate) RefundsEnabled() bool {
	return g.refunds.Enabled()
}

// FeeAdjustBps returns the stored basis-points parameter. The gate never
// applies it; it is carried for external consumers.
func (g *Gate) FeeAdjustBps() int64 {
	return g.cfg.FeeAdjustBps
}

func (g *Gate) Issuer() common.Address {
	return g.cfg.Issuer
}

func (g *Gate) TotalMinted() uint64 {
	return g.credentials.TotalMinted()
}

func (g *Gate) observe(op, asset string, start time.Time, err error) {
	labels := map[string]string{"asset": asset}
	if err != nil {
		g.metrics.IncCounter(op+"_failed", labels)
	} else {
		g.metrics.IncCounter(op, labels)
	}
	g.metrics.ObserveLatency(op, time.Since(start), labels)
}

func bigString(v *big.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
