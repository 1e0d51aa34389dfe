package types

// GateError is the error type surfaced by every gate operation. Code is a
// stable machine identifier; Message is for humans. Err carries the verbatim
// collaborator error for transfer failures.
type GateError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *GateError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *GateError) Unwrap() error {
	return e.Err
}

// Is matches two GateErrors by code, so errors.Is works against the
// sentinels below regardless of message.
func (e *GateError) Is(target error) bool {
	t, ok := target.(*GateError)
	return ok && t.Code == e.Code
}

// Error codes
const (
	ErrConfiguration          = "CONFIGURATION_ERROR"
	ErrUnsupportedAsset       = "UNSUPPORTED_ASSET"
	ErrAlreadyPurchased       = "ALREADY_PURCHASED"
	ErrNoPurchase             = "NO_PURCHASE"
	ErrNothingToRefund        = "NOTHING_TO_REFUND"
	ErrRefundsDisabled        = "REFUNDS_DISABLED"
	ErrTransferFailed         = "TRANSFER_FAILED"
	ErrTransferDisabled       = "TRANSFER_DISABLED"
	ErrUnauthorized           = "UNAUTHORIZED"
	ErrAlreadyHoldsCredential = "ALREADY_HOLDS_CREDENTIAL"
)

// Sentinels for errors.Is matching.
var (
	Configuration          = &GateError{Code: ErrConfiguration, Message: "invalid configuration"}
	UnsupportedAsset       = &GateError{Code: ErrUnsupportedAsset, Message: "unsupported asset"}
	AlreadyPurchased       = &GateError{Code: ErrAlreadyPurchased, Message: "spot already purchased"}
	NoPurchase             = &GateError{Code: ErrNoPurchase, Message: "no purchase recorded"}
	NothingToRefund        = &GateError{Code: ErrNothingToRefund, Message: "nothing to refund"}
	RefundsDisabled        = &GateError{Code: ErrRefundsDisabled, Message: "refunds are disabled"}
	TransferFailed         = &GateError{Code: ErrTransferFailed, Message: "asset transfer failed"}
	TransferDisabled       = &GateError{Code: ErrTransferDisabled, Message: "credential transfers are disabled"}
	Unauthorized           = &GateError{Code: ErrUnauthorized, Message: "caller is not the issuer"}
	AlreadyHoldsCredential = &GateError{Code: ErrAlreadyHoldsCredential, Message: "address already holds a credential"}
)

// CodeOf returns the gate error code of err, or "" for foreign errors.
func CodeOf(err error) string {
	if ge, ok := err.(*GateError); ok {
		return ge.Code
	}
	return ""
}
