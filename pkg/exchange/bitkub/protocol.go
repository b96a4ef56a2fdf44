package bitkub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"resty.dev/v3"

	"bitkub/internal/canonical"
	"bitkub/pkg/core"
)

const (
	exchangeName = "bitkub"

	HeaderAPIKey = "X-BTK-APIKEY"

	pathServerTime   = "/api/servertime"
	pathSymbols      = "/api/market/symbols"
	pathTicker       = "/api/market/ticker"
	pathPlaceBid     = "/api/market/place-bid"
	pathPlaceAsk     = "/api/market/place-ask"
	pathCancelOrder  = "/api/market/cancel-order"
	pathOpenOrders   = "/api/market/my-open-orders"
	pathOrderHistory = "/api/market/my-order-history"
	pathOrderInfo    = "/api/market/order-info"
	pathWallet       = "/api/market/wallet"
	pathBalances     = "/api/market/balances"
	pathPriceHistory = "/api/market/tradingview"
)

// Protocol implements core.Protocol for the Bitkub REST API.
type Protocol struct {
	normalizer *Normalizer
}

// NewProtocol creates a new Bitkub protocol instance.
func NewProtocol() *Protocol {
	return &Protocol{normalizer: NewNormalizer()}
}

// Name returns the protocol identifier "bitkub".
func (p *Protocol) Name() string {
	return exchangeName
}

// Version returns the Bitkub API version string.
func (p *Protocol) Version() string {
	return "2"
}

// SupportedOperations returns the list of operations supported by this protocol.
func (p *Protocol) SupportedOperations() []core.Operation {
	return []core.Operation{
		core.OpGetServerTime,
		core.OpGetSymbols,
		core.OpGetTicker,
		core.OpPlaceBid,
		core.OpPlaceAsk,
		core.OpCancelOrder,
		core.OpGetOpenOrders,
		core.OpGetOrderHistory,
		core.OpGetOrderInfo,
		core.OpGetWallet,
		core.OpGetBalances,
		core.OpGetPriceHistory,
	}
}

// BuildRequest constructs the HTTP request for op. Signed operations carry
// their unsigned record as a core.Params body; SignRequest completes them.
func (p *Protocol) BuildRequest(ctx context.Context, op core.Operation, params core.Params) (*core.Request, error) {
	switch op {
	case core.OpGetServerTime:
		return core.NewRequest(http.MethodGet, pathServerTime), nil
	case core.OpGetSymbols:
		return core.NewRequest(http.MethodGet, pathSymbols), nil
	case core.OpGetTicker:
		req := core.NewRequest(http.MethodGet, pathTicker)
		if sym, ok := params["sym"].(string); ok && sym != "" {
			req.SetQuery("sym", sym)
		}
		return req, nil
	case core.OpPlaceBid:
		return p.buildPlaceRequest(pathPlaceBid, params)
	case core.OpPlaceAsk:
		return p.buildPlaceRequest(pathPlaceAsk, params)
	case core.OpCancelOrder:
		return p.buildOrderRefRequest(pathCancelOrder, params)
	case core.OpGetOrderInfo:
		return p.buildOrderRefRequest(pathOrderInfo, params)
	case core.OpGetOpenOrders:
		return p.buildSymbolRequest(pathOpenOrders, params, nil)
	case core.OpGetOrderHistory:
		return p.buildSymbolRequest(pathOrderHistory, params, []string{"p", "lmt", "start", "end"})
	case core.OpGetWallet:
		return signedRequest(pathWallet, core.Params{}), nil
	case core.OpGetBalances:
		return signedRequest(pathBalances, core.Params{}), nil
	case core.OpGetPriceHistory:
		return p.buildPriceHistoryRequest(params)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
}

func signedRequest(path string, record core.Params) *core.Request {
	return core.NewRequest(http.MethodPost, path).
		SetBody(record).
		SetRequireAuth(true)
}

func (p *Protocol) buildPlaceRequest(path string, params core.Params) (*core.Request, error) {
	record := core.Params{}
	for _, key := range []string{"sym", "amt", "rat", "typ"} {
		v, ok := params[key]
		if !ok || v == nil {
			return nil, fmt.Errorf("%s is required", key)
		}
		record[key] = v
	}
	return signedRequest(path, record), nil
}

func (p *Protocol) buildOrderRefRequest(path string, params core.Params) (*core.Request, error) {
	sym, err := getRequiredStringParam(params, "sym")
	if err != nil {
		return nil, err
	}
	id, err := getRequiredStringParam(params, "id")
	if err != nil {
		return nil, err
	}
	sd, err := getRequiredStringParam(params, "sd")
	if err != nil {
		return nil, err
	}
	return signedRequest(path, core.Params{
		"sym": sym,
		"id":  orderIDValue(id),
		"sd":  sd,
	}), nil
}

func (p *Protocol) buildSymbolRequest(path string, params core.Params, optional []string) (*core.Request, error) {
	sym, err := getRequiredStringParam(params, "sym")
	if err != nil {
		return nil, err
	}
	record := core.Params{"sym": sym}
	for _, key := range optional {
		if v, ok := params[key]; ok && v != nil {
			record[key] = v
		}
	}
	return signedRequest(path, record), nil
}

func (p *Protocol) buildPriceHistoryRequest(params core.Params) (*core.Request, error) {
	sym, err := getRequiredStringParam(params, "sym")
	if err != nil {
		return nil, err
	}
	interval, err := getRequiredStringParam(params, "int")
	if err != nil {
		return nil, err
	}
	req := core.NewRequest(http.MethodGet, pathPriceHistory)
	req.SetQuery("sym", sym)
	req.SetQuery("int", interval)
	for _, key := range []string{"frm", "to"} {
		if v, ok := params[key]; ok && v != nil {
			req.SetQuery(key, v)
		}
	}
	return req, nil
}

// SignRequest stamps the record with ts, signs it and replaces the body with the
// canonical encoding of the record plus sig. Any sig supplied by the caller is
// dropped before signing.
func (p *Protocol) SignRequest(req *core.Request, ts int64, signer core.Signer) error {
	if signer == nil {
		return core.ErrNoCredentials
	}
	body, ok := req.Body.(core.Params)
	if !ok {
		return fmt.Errorf("unsigned body must be core.Params, got %T", req.Body)
	}

	record := body.Clone()
	delete(record, "sig")
	record["ts"] = ts

	sig, err := signer.Sign(record)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	record["sig"] = sig

	payload, err := canonical.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	req.SetBody(payload)
	req.SetHeader(HeaderAPIKey, signer.APIKey())
	req.SetHeader("Accept", "application/json")
	req.SetHeader("Content-Type", "application/json")
	return nil
}

// ParseResponse decodes the response for op and maps nonzero error codes to
// domain errors.
func (p *Protocol) ParseResponse(op core.Operation, resp *resty.Response) (any, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil response")
	}

	if op == core.OpGetServerTime {
		return p.parseServerTime(resp)
	}

	var body map[string]any
	if err := canonical.Unmarshal(resp.Bytes(), &body); err != nil {
		if resp.IsError() {
			return nil, statusError(resp, err)
		}
		return nil, core.NewTransportError(p.Name(), core.ErrorTypeDecode, resp.StatusCode(),
			"decode response", err)
	}

	code, hasCode, err := errorCode(body)
	if err != nil {
		return nil, core.NewTransportError(p.Name(), core.ErrorTypeDecode, resp.StatusCode(),
			"decode error field", err)
	}
	if code != core.CodeOK {
		return nil, core.NewDomainError(p.Name(), resp.StatusCode(), code)
	}
	if resp.IsError() {
		return nil, statusError(resp, nil)
	}

	switch op {
	case core.OpGetTicker:
		return p.normalizer.NormalizeTickers(body)
	case core.OpGetPriceHistory:
		if result, ok := body["result"].(map[string]any); ok {
			body = result
		}
		return p.normalizer.NormalizeCandles(body)
	}

	if !hasCode {
		return nil, core.NewTransportError(p.Name(), core.ErrorTypeDecode, resp.StatusCode(),
			"response has no error field", nil)
	}
	result := body["result"]

	switch op {
	case core.OpGetSymbols:
		return p.normalizer.NormalizeTable(result, symbolColumns)
	case core.OpPlaceBid:
		return p.normalizer.NormalizePlacedOrder(result, core.SideBuy)
	case core.OpPlaceAsk:
		return p.normalizer.NormalizePlacedOrder(result, core.SideSell)
	case core.OpCancelOrder:
		return nil, nil
	case core.OpGetOpenOrders:
		return p.normalizer.NormalizeTable(result, openOrderColumns)
	case core.OpGetOrderHistory:
		return p.normalizer.NormalizeTable(result, orderHistoryColumns)
	case core.OpGetOrderInfo:
		return p.normalizer.NormalizeRecord(result)
	case core.OpGetWallet:
		return p.normalizer.NormalizeWallet(result)
	case core.OpGetBalances:
		return p.normalizer.NormalizeBalances(result)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
}

func (p *Protocol) parseServerTime(resp *resty.Response) (int64, error) {
	if resp.IsError() {
		return 0, statusError(resp, nil)
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(resp.String()), 10, 64)
	if err != nil {
		return 0, core.NewTransportError(exchangeName, core.ErrorTypeDecode, resp.StatusCode(),
			"decode server time", err)
	}
	return ts, nil
}

func statusError(resp *resty.Response, cause error) error {
	return core.NewTransportError(exchangeName, core.ErrorTypeNetwork, resp.StatusCode(),
		fmt.Sprintf("unexpected status %s", resp.Status()), cause)
}

// errorCode reads the envelope's error field. A body without one reports hasCode false.
func errorCode(body map[string]any) (code int, hasCode bool, err error) {
	raw, ok := body["error"]
	if !ok {
		return 0, false, nil
	}
	n, ok := raw.(json.Number)
	if !ok {
		return 0, true, fmt.Errorf("error field is %T", raw)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, true, err
	}
	return int(v), true, nil
}

// orderIDValue sends ids in canonical integer form as JSON numbers and anything
// else, including "007" or "+5", as a string.
func orderIDValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && strconv.FormatInt(n, 10) == id {
		return json.Number(id)
	}
	return id
}

func getRequiredStringParam(params core.Params, key string) (string, error) {
	val, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	str, ok := val.(string)
	if !ok || str == "" {
		return "", fmt.Errorf("%s must be a non-empty string", key)
	}
	return str, nil
}
