package server

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/ikeenlabs/gatepass/types"
)

type respErr struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type purchaseResp struct {
	Payer        string `json:"payer"`
	Asset        string `json:"asset"`
	Amount       string `json:"amount"`
	CredentialID uint64 `json:"credentialId"`
	Granted      bool   `json:"granted"`
}

type depositReq struct {
	Amount string `json:"amount" binding:"required"`
}

func (s *Server) buySpot(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	asset, ok := parseAddress(c, c.Param("asset"))
	if !ok {
		return
	}

	rec, err := s.gate.BuySpot(c.Request.Context(), caller, asset)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, toPurchaseResp(rec))
}

// nativeDeposit models the bare value transfer: the body carries the amount
// of native currency the caller sent along.
func (s *Server) nativeDeposit(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}

	var req depositReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, respErr{Error: "amount is required"})
		return
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		c.JSON(http.StatusBadRequest, respErr{Error: "invalid amount"})
		return
	}

	rec, err := s.gate.OnNativeDeposit(c.Request.Context(), caller, amount)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, toPurchaseResp(rec))
}

func (s *Server) gimmeARefund(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, respErr{Error: "invalid credential id"})
		return
	}

	rec, err := s.gate.Refund(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, toPurchaseResp(rec))
}

func (s *Server) addWhitelist(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	to, ok := parseAddress(c, c.Param("address"))
	if !ok {
		return
	}

	rec, err := s.gate.AddWhitelist(c.Request.Context(), caller, to)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, toPurchaseResp(rec))
}

func (s *Server) withdraw(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	asset, ok := parseAddress(c, c.Param("asset"))
	if !ok {
		return
	}

	moved, err := s.gate.Withdraw(c.Request.Context(), caller, asset)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset.Hex(), "amount": moved.String()})
}

func (s *Server) getPurchase(c *gin.Context) {
	addr, ok := parseAddress(c, c.Param("address"))
	if !ok {
		return
	}

	rec, err := s.gate.PurchaseOf(addr)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, toPurchaseResp(rec))
}

func (s *Server) getOwner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, respErr{Error: "invalid credential id"})
		return
	}

	owner, err := s.gate.OwnerOf(id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credentialId": id, "owner": owner.Hex()})
}

func (s *Server) getBalance(c *gin.Context) {
	addr, ok := parseAddress(c, c.Param("address"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":   addr.Hex(),
		"balance":   s.gate.BalanceOf(addr),
		"purchased": s.gate.HasPurchased(addr),
	})
}

func (s *Server) getAssets(c *gin.Context) {
	assets := s.gate.Assets()
	out := make([]gin.H, 0, len(assets))
	for _, a := range assets {
		out = append(out, gin.H{"token": a.Token.Hex(), "amount": a.Amount.String()})
	}
	c.JSON(http.StatusOK, gin.H{"assets": out})
}

func (s *Server) getInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"issuer":       s.gate.Issuer().Hex(),
		"refundable":   s.gate.RefundsEnabled(),
		"feeAdjustBps": s.gate.FeeAdjustBps(),
		"totalMinted":  s.gate.TotalMinted(),
	})
}

func (s *Server) caller(c *gin.Context) (common.Address, bool) {
	return parseAddress(c, c.GetHeader("X-Caller"))
}

func parseAddress(c *gin.Context, raw string) (common.Address, bool) {
	if !common.IsHexAddress(raw) {
		c.JSON(http.StatusBadRequest, respErr{Error: "invalid address"})
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func toPurchaseResp(rec types.Purchase) purchaseResp {
	return purchaseResp{
		Payer:        rec.Payer.Hex(),
		Asset:        rec.Asset.Hex(),
		Amount:       rec.Amount.String(),
		CredentialID: rec.CredentialID,
		Granted:      rec.Granted,
	}
}

func errorResponse(c *gin.Context, err error) {
	var gateErr *types.GateError
	if !errors.As(err, &gateErr) {
		c.JSON(http.StatusInternalServerError, respErr{Error: err.Error()})
		return
	}
	c.JSON(statusFor(gateErr.Code), respErr{Code: gateErr.Code, Error: gateErr.Message})
}

func statusFor(code string) int {
	switch code {
	case types.ErrUnauthorized:
		return http.StatusForbidden
	case types.ErrNoPurchase:
		return http.StatusNotFound
	case types.ErrAlreadyPurchased, types.ErrAlreadyHoldsCredential:
		return http.StatusConflict
	case types.ErrTransferFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusBadRequest
	}
}
