package bitkub

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitkub/internal/signer"
	"bitkub/pkg/core"
)

var _ core.Protocol = (*Protocol)(nil)

func testSigner(t *testing.T) *signer.Signer {
	t.Helper()
	s, err := signer.New("test-key", "s3cr3t")
	require.NoError(t, err)
	return s
}

func TestProtocol_Name(t *testing.T) {
	p := NewProtocol()
	assert.Equal(t, "bitkub", p.Name())
	assert.NotEmpty(t, p.Version())
}

func TestProtocol_SupportedOperations(t *testing.T) {
	ops := NewProtocol().SupportedOperations()
	assert.Len(t, ops, 12)
	assert.Contains(t, ops, core.OpGetServerTime)
	assert.Contains(t, ops, core.OpGetPriceHistory)
}

func TestProtocol_BuildRequest(t *testing.T) {
	p := NewProtocol()
	ctx := context.Background()

	tests := []struct {
		name     string
		op       core.Operation
		params   core.Params
		method   string
		path     string
		auth     bool
		body     core.Params
		query    core.Params
		hasError bool
	}{
		{
			name:   "server time",
			op:     core.OpGetServerTime,
			method: http.MethodGet,
			path:   "/api/servertime",
		},
		{
			name:   "symbols",
			op:     core.OpGetSymbols,
			method: http.MethodGet,
			path:   "/api/market/symbols",
		},
		{
			name:   "ticker for one pair",
			op:     core.OpGetTicker,
			params: core.Params{"sym": "THB_BTC"},
			method: http.MethodGet,
			path:   "/api/market/ticker",
			query:  core.Params{"sym": "THB_BTC"},
		},
		{
			name:   "place bid",
			op:     core.OpPlaceBid,
			params: core.Params{"sym": "THB_XLM", "amt": 100, "rat": 5.5, "typ": "limit", "extra": true},
			method: http.MethodPost,
			path:   "/api/market/place-bid",
			auth:   true,
			body:   core.Params{"sym": "THB_XLM", "amt": 100, "rat": 5.5, "typ": "limit"},
		},
		{
			name:     "place ask missing rate",
			op:       core.OpPlaceAsk,
			params:   core.Params{"sym": "THB_XLM", "amt": 100, "typ": "limit"},
			hasError: true,
		},
		{
			name:   "cancel order numeric id",
			op:     core.OpCancelOrder,
			params: core.Params{"sym": "THB_XLM", "id": "123", "sd": "sell"},
			method: http.MethodPost,
			path:   "/api/market/cancel-order",
			auth:   true,
			body:   core.Params{"sym": "THB_XLM", "id": json.Number("123"), "sd": "sell"},
		},
		{
			name:   "order info hash id",
			op:     core.OpGetOrderInfo,
			params: core.Params{"sym": "THB_XLM", "id": "fwQ6dnQ", "sd": "buy"},
			method: http.MethodPost,
			path:   "/api/market/order-info",
			auth:   true,
			body:   core.Params{"sym": "THB_XLM", "id": "fwQ6dnQ", "sd": "buy"},
		},
		{
			name:     "cancel order missing side",
			op:       core.OpCancelOrder,
			params:   core.Params{"sym": "THB_XLM", "id": "1"},
			hasError: true,
		},
		{
			name:   "order history with paging",
			op:     core.OpGetOrderHistory,
			params: core.Params{"sym": "THB_XLM", "p": 2, "lmt": 10},
			method: http.MethodPost,
			path:   "/api/market/my-order-history",
			auth:   true,
			body:   core.Params{"sym": "THB_XLM", "p": 2, "lmt": 10},
		},
		{
			name:     "open orders without symbol",
			op:       core.OpGetOpenOrders,
			params:   core.Params{},
			hasError: true,
		},
		{
			name:   "wallet",
			op:     core.OpGetWallet,
			method: http.MethodPost,
			path:   "/api/market/wallet",
			auth:   true,
			body:   core.Params{},
		},
		{
			name:   "balances",
			op:     core.OpGetBalances,
			method: http.MethodPost,
			path:   "/api/market/balances",
			auth:   true,
			body:   core.Params{},
		},
		{
			name:   "price history is public",
			op:     core.OpGetPriceHistory,
			params: core.Params{"sym": "THB_XLM", "int": "60", "frm": int64(1000)},
			method: http.MethodGet,
			path:   "/api/market/tradingview",
			query:  core.Params{"sym": "THB_XLM", "int": "60", "frm": int64(1000)},
		},
		{
			name:     "unsupported operation",
			op:       core.Operation(99),
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := p.BuildRequest(ctx, tt.op, tt.params)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, tt.auth, req.RequireAuth)
			if tt.body != nil {
				assert.Equal(t, tt.body, req.Body)
			}
			if tt.query != nil {
				assert.Equal(t, tt.query, req.Query)
			}
		})
	}
}

func TestProtocol_SignRequest_GoldenBody(t *testing.T) {
	p := NewProtocol()
	amt, _, _ := apd.NewFromString("100")
	rat, _, _ := apd.NewFromString("5.5")

	req, err := p.BuildRequest(context.Background(), core.OpPlaceBid, core.Params{
		"sym": "THB_XLM",
		"amt": *amt,
		"rat": *rat,
		"typ": "limit",
	})
	require.NoError(t, err)

	require.NoError(t, p.SignRequest(req, 1000, testSigner(t)))

	assert.Equal(t,
		`{"amt":100,"rat":5.5,"sig":"17c89c17a2773bf96d295c6bad921e820ce39a4d71a7832e9310c691b1db2e2a","sym":"THB_XLM","ts":1000,"typ":"limit"}`,
		string(req.Body.([]byte)))
	assert.Equal(t, "test-key", req.Headers[HeaderAPIKey])
	assert.Equal(t, "application/json", req.Headers["Accept"])
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
}

func TestProtocol_SignRequest_TimestampOnly(t *testing.T) {
	p := NewProtocol()
	req, err := p.BuildRequest(context.Background(), core.OpGetWallet, nil)
	require.NoError(t, err)

	require.NoError(t, p.SignRequest(req, 1000, testSigner(t)))

	assert.Equal(t,
		`{"sig":"834829042b1c076587b07d3618fe852fc31f18c98ad3f22fda105250bec4dd98","ts":1000}`,
		string(req.Body.([]byte)))
}

func TestProtocol_SignRequest_DropsCallerSig(t *testing.T) {
	p := NewProtocol()
	req := signedRequest("/api/market/wallet", core.Params{"sig": "forged", "ts": 1})

	require.NoError(t, p.SignRequest(req, 1000, testSigner(t)))

	assert.Equal(t,
		`{"sig":"834829042b1c076587b07d3618fe852fc31f18c98ad3f22fda105250bec4dd98","ts":1000}`,
		string(req.Body.([]byte)))
}

func TestProtocol_SignRequest_DoesNotMutateRecord(t *testing.T) {
	p := NewProtocol()
	record := core.Params{"sym": "THB_XLM"}
	req := signedRequest("/api/market/my-open-orders", record)

	require.NoError(t, p.SignRequest(req, 1000, testSigner(t)))

	assert.Equal(t, core.Params{"sym": "THB_XLM"}, record)
}

func TestProtocol_SignRequest_Errors(t *testing.T) {
	p := NewProtocol()

	req := signedRequest("/api/market/wallet", core.Params{})
	assert.ErrorIs(t, p.SignRequest(req, 1000, nil), core.ErrNoCredentials)

	req = core.NewRequest(http.MethodPost, "/api/market/wallet").SetBody("raw")
	assert.Error(t, p.SignRequest(req, 1000, testSigner(t)))
}

func TestOrderIDValue(t *testing.T) {
	assert.Equal(t, json.Number("42"), orderIDValue("42"))
	assert.Equal(t, "fwQ6dnQ", orderIDValue("fwQ6dnQ"))
	assert.Equal(t, "4.2", orderIDValue("4.2"))
	assert.Equal(t, "007", orderIDValue("007"))
	assert.Equal(t, "+5", orderIDValue("+5"))
	assert.Equal(t, json.Number("-3"), orderIDValue("-3"))
}

func TestErrorCode(t *testing.T) {
	code, ok, err := errorCode(map[string]any{"error": json.Number("18")})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 18, code)

	_, ok, err = errorCode(map[string]any{"THB_BTC": map[string]any{}})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = errorCode(map[string]any{"error": "bad"})
	assert.Error(t, err)
}
