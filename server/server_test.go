package server

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikeenlabs/gatepass"
	"github.com/ikeenlabs/gatepass/token"
	"github.com/ikeenlabs/gatepass/types"
)

var (
	issuerAddr = common.HexToAddress("0x1550000000000000000000000000000000000001")
	custody    = common.HexToAddress("0xc0de000000000000000000000000000000000001")
	t1Addr     = common.HexToAddress("0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E")
	wavaxAddr  = common.HexToAddress("0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7")
	alice      = common.HexToAddress("0xa11c000000000000000000000000000000000001")
)

var (
	t1Fee     = big.NewInt(20_000000)
	nativeFee = new(big.Int).Mul(big.NewInt(250), big.NewInt(1e18))
)

func newServer(t *testing.T) (*Server, *token.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	t1 := token.NewMemory("T1")
	wavax := token.NewWrappedMemory("WAVAX")

	gate, err := gatepass.New(&types.Config{
		Assets: []types.AcceptedAsset{
			{Token: t1Addr, Amount: t1Fee},
			{Token: wavaxAddr, Amount: nativeFee},
		},
		Issuer:        issuerAddr,
		Custody:       custody,
		WrappedNative: wavaxAddr,
		Refundable:    true,
		Tokens: map[common.Address]token.ERC20{
			t1Addr: t1.Bound(custody),
		},
		Wrapped: wavax.Bound(custody),
	})
	require.NoError(t, err)
	return New(gate), t1
}

func do(s *Server, method, path, caller, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestBuySpotEndpoint(t *testing.T) {
	s, t1 := newServer(t)
	t1.Mint(alice, big.NewInt(30_000000))
	require.NoError(t, t1.Bound(alice).Approve(context.Background(), custody, t1Fee))

	w := do(s, http.MethodPost, "/buy/"+t1Addr.Hex(), alice.Hex(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp purchaseResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, alice.Hex(), resp.Payer)
	assert.Equal(t, uint64(0), resp.CredentialID)
	assert.Equal(t, t1Fee.String(), resp.Amount)

	// second purchase conflicts
	w = do(s, http.MethodPost, "/buy/"+t1Addr.Hex(), alice.Hex(), "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBuySpotWithoutFundsIsPaymentRequired(t *testing.T) {
	s, _ := newServer(t)

	w := do(s, http.MethodPost, "/buy/"+t1Addr.Hex(), alice.Hex(), "")
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestDepositEndpoint(t *testing.T) {
	s, _ := newServer(t)

	w := do(s, http.MethodPost, "/deposit", alice.Hex(), `{"amount":"`+nativeFee.String()+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// wrong amount is rejected
	w = do(s, http.MethodPost, "/deposit", common.HexToAddress("0x02").Hex(), `{"amount":"1"}`)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestWithdrawAuthorization(t *testing.T) {
	s, _ := newServer(t)

	w := do(s, http.MethodPost, "/withdraw/"+t1Addr.Hex(), alice.Hex(), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(s, http.MethodPost, "/withdraw/"+t1Addr.Hex(), issuerAddr.Hex(), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWhitelistAndReads(t *testing.T) {
	s, _ := newServer(t)

	w := do(s, http.MethodPost, "/whitelist/"+alice.Hex(), issuerAddr.Hex(), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(s, http.MethodGet, "/balance/"+alice.Hex(), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":1`)

	w = do(s, http.MethodGet, "/owner/0", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), alice.Hex())

	w = do(s, http.MethodGet, "/owner/99", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(s, http.MethodGet, "/assets", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), t1Addr.Hex())

	// a granted spot cannot be refunded
	w = do(s, http.MethodPost, "/gimmeARefund/0", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), types.ErrNothingToRefund)
}

func TestBadInputs(t *testing.T) {
	s, _ := newServer(t)

	w := do(s, http.MethodPost, "/buy/not-an-address", alice.Hex(), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(s, http.MethodPost, "/buy/"+t1Addr.Hex(), "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(s, http.MethodPost, "/deposit", alice.Hex(), `{"amount":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(s, http.MethodPost, "/gimmeARefund/xyz", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
