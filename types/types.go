// Package types holds the shared data model of the gatepass membership gate:
// accepted-asset configuration, purchase records, and the error taxonomy.
package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ikeenlabs/gatepass/token"
)

// GrantAsset is the sentinel asset recorded for administrative grants.
// Nothing was paid for such an entry and it can never be refunded.
var GrantAsset = common.Address{}

// AcceptedAsset binds a fungible asset to the exact fee it settles.
// Amount is denominated in the smallest unit of the asset.
type AcceptedAsset struct {
	Token  common.Address `json:"token" validate:"required"`
	Amount *big.Int       `json:"amount" validate:"required"`
}

// Purchase is the ledger record of a single membership purchase. At most one
// exists per payer; a refund deletes it.
type Purchase struct {
	Payer        common.Address `json:"payer"`
	Asset        common.Address `json:"asset"`
	Amount       *big.Int       `json:"amount"`
	CredentialID uint64         `json:"credentialId"`
	Granted      bool           `json:"granted"`
	PurchasedAt  time.Time      `json:"purchasedAt"`
}

// Config is the construction-time configuration of a gate. It is validated
// once by gatepass.New and never mutated afterwards.
type Config struct {
	// Assets lists the accepted fee assets in configuration order. The
	// wrapped-native asset, if native deposits are accepted, must appear
	// here with its fee like any other asset.
	Assets []AcceptedAsset `json:"assets" validate:"required,min=1,dive"`

	// Issuer is the administrative address allowed to withdraw funds and
	// grant spots without payment.
	Issuer common.Address `json:"issuer" validate:"required"`

	// Custody is the address holding collected fees. Token handles in Tokens
	// must act on behalf of this address.
	Custody common.Address `json:"custody" validate:"required"`

	// WrappedNative identifies the wrapped form of the native settlement
	// currency. Zero when native deposits are not accepted.
	WrappedNative common.Address `json:"wrappedNative"`

	// FeeAdjustBps is a basis-points adjustment parameter carried for
	// external consumers. The gate stores it and never applies it.
	FeeAdjustBps int64 `json:"feeAdjustBps"`

	// Refundable enables the refund entry point for this deployment.
	Refundable bool `json:"refundable"`

	// AllowZeroFee permits explicitly free asset entries. Off by default so
	// a zero amount in Assets is treated as a configuration mistake.
	AllowZeroFee bool `json:"allowZeroFee"`

	LogLevel      string `json:"logLevel,omitempty"`
	EnableMetrics bool   `json:"enableMetrics,omitempty"`

	// Tokens maps each accepted asset to its transfer handle, bound to the
	// custody account. The wrapped-native entry is wired automatically from
	// Wrapped when absent.
	Tokens map[common.Address]token.ERC20 `json:"-"`

	// Wrapped is the wrap service for the native currency. Required when
	// WrappedNative is configured.
	Wrapped token.WrappedNative `json:"-"`
}

// NewConfig assembles a Config from the parallel identifier and amount lists
// of the deployment interface. The lists must be of equal length.
func NewConfig(
	assets []common.Address,
	amounts []*big.Int,
	feeAdjustBps int64,
	refundable bool,
	wrappedNative common.Address,
) (*Config, error) {
	if len(assets) != len(amounts) {
		return nil, &GateError{
			Code:    ErrConfiguration,
			Message: "asset and amount lists differ in length",
		}
	}

	accepted := make([]AcceptedAsset, 0, len(assets))
	for i, asset := range assets {
		accepted = append(accepted, AcceptedAsset{Token: asset, Amount: amounts[i]})
	}

	return &Config{
		Assets:        accepted,
		FeeAdjustBps:  feeAdjustBps,
		Refundable:    refundable,
		WrappedNative: wrappedNative,
	}, nil
}
