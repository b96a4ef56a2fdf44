package bitkub

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"resty.dev/v3"

	httpClient "bitkub/internal/http"
	"bitkub/internal/signer"
	"bitkub/pkg/core"
	"bitkub/pkg/exchange"
)

// Exchange is a Bitkub client bound to one host, one credential pair and one
// trading pair. Nothing is mutated after New, so an Exchange is safe for
// concurrent use.
type Exchange struct {
	host       string
	symbol     string
	signer     *signer.Signer
	httpClient *httpClient.Client
	logger     zerolog.Logger
	protocol   *Protocol
}

var _ exchange.Exchange = (*Exchange)(nil)

// Option is a functional option for configuring the Exchange.
type Option func(*Options)

// Options holds configuration options for the Exchange.
type Options struct {
	Logger zerolog.Logger
}

// WithLogger returns an option that sets the logger for the exchange.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// New creates an Exchange from config. Credentials are copied, so later changes
// to config do not affect the returned client.
func New(config *core.Config, opts ...Option) (*Exchange, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.Logger
	if config.LogLevel != "" {
		level, err := zerolog.ParseLevel(config.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		logger = logger.Level(level)
	}
	logger = logger.With().Str("exchange", exchangeName).Logger()

	var s *signer.Signer
	if config.Credentials != nil {
		var err error
		s, err = signer.New(config.Credentials.APIKey, config.Credentials.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("create signer: %w", err)
		}
		logger.Debug().Stringer("signer", s).Msg("credentials loaded")
	}

	client, err := httpClient.NewClient(&httpClient.Config{
		BaseURL: config.Host,
		Timeout: config.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &Exchange{
		host:       config.Host,
		symbol:     config.Symbol,
		signer:     s,
		httpClient: client,
		logger:     logger,
		protocol:   NewProtocol(),
	}, nil
}

// Name returns the exchange identifier "bitkub".
func (e *Exchange) Name() string {
	return exchangeName
}

// Version returns the Bitkub API version.
func (e *Exchange) Version() string {
	return e.protocol.Version()
}

// Symbol returns the trading pair bound to the client.
func (e *Exchange) Symbol() string {
	return e.symbol
}

// Close releases resources used by the exchange, including the HTTP client.
func (e *Exchange) Close() error {
	if e.httpClient != nil {
		return e.httpClient.Close()
	}
	return nil
}

// ServerTime returns the exchange clock. It is unauthenticated and every signed
// call fetches it afresh.
func (e *Exchange) ServerTime(ctx context.Context) (int64, error) {
	result, err := e.call(ctx, core.OpGetServerTime, nil)
	if err != nil {
		return 0, err
	}
	ts, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected response type: %T", result)
	}
	return ts, nil
}

// Symbols lists the tradable pairs with columns id, symbol and info.
func (e *Exchange) Symbols(ctx context.Context) (core.Table, error) {
	return e.callTable(ctx, core.OpGetSymbols, nil)
}

// Ticker returns market data for symbol, or for the bound pair when symbol is empty.
func (e *Exchange) Ticker(ctx context.Context, symbol string) (*core.Ticker, error) {
	if symbol == "" {
		symbol = e.symbol
	}
	if symbol == "" {
		return nil, core.ErrNoSymbol
	}
	return e.ticker(ctx, symbol, core.Params{"sym": symbol})
}

// Price returns the last traded price of the bound pair.
func (e *Exchange) Price(ctx context.Context) (apd.Decimal, error) {
	if e.symbol == "" {
		return apd.Decimal{}, core.ErrNoSymbol
	}
	t, err := e.ticker(ctx, e.symbol, nil)
	if err != nil {
		return apd.Decimal{}, err
	}
	return t.Last, nil
}

func (e *Exchange) ticker(ctx context.Context, symbol string, params core.Params) (*core.Ticker, error) {
	result, err := e.call(ctx, core.OpGetTicker, params)
	if err != nil {
		return nil, err
	}
	tickers, ok := result.(map[string]*core.Ticker)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	t, ok := tickers[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol %s not in ticker response", symbol)
	}
	return t, nil
}

// PriceHistory returns candles of the bound pair. interval is the resolution
// understood by the server, e.g. "60" or "1D". WithTimeRange sets frm and to.
func (e *Exchange) PriceHistory(ctx context.Context, interval string, opts ...exchange.Option) (core.Table, error) {
	if e.symbol == "" {
		return core.Table{}, core.ErrNoSymbol
	}
	options := exchange.ApplyOptions(opts...)

	params := core.Params{
		"sym": e.symbol,
		"int": interval,
	}
	if !options.StartTime.IsZero() {
		params["frm"] = options.StartTime.Unix()
	}
	if !options.EndTime.IsZero() {
		params["to"] = options.EndTime.Unix()
	}
	return e.callTable(ctx, core.OpGetPriceHistory, params)
}

// PlaceBid buys using Amount of quote currency at Rate.
func (e *Exchange) PlaceBid(ctx context.Context, req *exchange.OrderRequest) (*core.PlacedOrder, error) {
	return e.place(ctx, core.OpPlaceBid, req)
}

// PlaceAsk sells Amount of base currency at Rate.
func (e *Exchange) PlaceAsk(ctx context.Context, req *exchange.OrderRequest) (*core.PlacedOrder, error) {
	return e.place(ctx, core.OpPlaceAsk, req)
}

// PlaceOrder dispatches to PlaceBid or PlaceAsk by side.
func (e *Exchange) PlaceOrder(ctx context.Context, req *exchange.OrderRequest) (*core.PlacedOrder, error) {
	if req == nil {
		return nil, fmt.Errorf("order request is nil")
	}
	if !req.Side.Valid() {
		return nil, fmt.Errorf("invalid order side %s", req.Side)
	}
	if req.Side == core.SideSell {
		return e.PlaceAsk(ctx, req)
	}
	return e.PlaceBid(ctx, req)
}

func (e *Exchange) place(ctx context.Context, op core.Operation, req *exchange.OrderRequest) (*core.PlacedOrder, error) {
	if req == nil {
		return nil, fmt.Errorf("order request is nil")
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("invalid order type %s", req.Type)
	}
	symbol := req.Symbol
	if symbol == "" {
		symbol = e.symbol
	}
	if symbol == "" {
		return nil, core.ErrNoSymbol
	}

	params := core.Params{
		"sym": symbol,
		"amt": req.Amount,
		"rat": req.Rate,
		"typ": req.Type.String(),
	}

	result, err := e.call(ctx, op, params)
	if err != nil {
		e.logger.Warn().Err(err).Str("op", op.String()).Str("symbol", symbol).Msg("place order failed")
		return nil, err
	}
	order, ok := result.(*core.PlacedOrder)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	order.Symbol = symbol

	e.logger.Info().
		Str("id", order.ID).
		Str("symbol", symbol).
		Str("side", order.Side.String()).
		Str("amount", order.Amount.String()).
		Str("rate", order.Rate.String()).
		Msg("order placed")
	return order, nil
}

// CancelOrder cancels order id on the bound pair.
func (e *Exchange) CancelOrder(ctx context.Context, id string, side core.OrderSide) error {
	if e.symbol == "" {
		return core.ErrNoSymbol
	}
	if !side.Valid() {
		return fmt.Errorf("invalid order side %s", side)
	}
	_, err := e.call(ctx, core.OpCancelOrder, core.Params{
		"sym": e.symbol,
		"id":  id,
		"sd":  side.String(),
	})
	if err != nil {
		return err
	}
	e.logger.Info().Str("id", id).Str("side", side.String()).Msg("order cancelled")
	return nil
}

// CancelAllOrders fetches the open orders once and cancels each of them. It does
// not stop at the first failure: the returned ids are the orders cancelled and
// the error combines every failure, split it with multierr.Errors.
func (e *Exchange) CancelAllOrders(ctx context.Context) ([]string, error) {
	open, err := e.OpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch open orders: %w", err)
	}

	var (
		cancelled []string
		errs      error
	)
	for _, row := range open.Rows {
		id := row.String("id")
		side, err := core.ParseOrderSide(row.String("side"))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		if err := e.CancelOrder(ctx, id, side); err != nil {
			e.logger.Warn().Err(err).Str("id", id).Msg("cancel failed")
			errs = multierr.Append(errs, fmt.Errorf("cancel order %s: %w", id, err))
			continue
		}
		cancelled = append(cancelled, id)
	}

	e.logger.Info().
		Int("open", open.Len()).
		Int("cancelled", len(cancelled)).
		Int("failed", len(multierr.Errors(errs))).
		Msg("cancel all finished")
	return cancelled, errs
}

// OpenOrders lists open orders on the bound pair.
func (e *Exchange) OpenOrders(ctx context.Context) (core.Table, error) {
	if e.symbol == "" {
		return core.Table{}, core.ErrNoSymbol
	}
	return e.callTable(ctx, core.OpGetOpenOrders, core.Params{"sym": e.symbol})
}

// OrderHistory lists past orders on the bound pair. WithPage, WithLimit and
// WithTimeRange map to p, lmt, start and end.
func (e *Exchange) OrderHistory(ctx context.Context, opts ...exchange.Option) (core.Table, error) {
	if e.symbol == "" {
		return core.Table{}, core.ErrNoSymbol
	}
	options := exchange.ApplyOptions(opts...)

	params := core.Params{"sym": e.symbol}
	if options.Page > 0 {
		params["p"] = options.Page
	}
	if options.Limit > 0 {
		params["lmt"] = options.Limit
	}
	if !options.StartTime.IsZero() {
		params["start"] = options.StartTime.Unix()
	}
	if !options.EndTime.IsZero() {
		params["end"] = options.EndTime.Unix()
	}
	return e.callTable(ctx, core.OpGetOrderHistory, params)
}

// OrderInfo returns the server record of one order.
func (e *Exchange) OrderInfo(ctx context.Context, id string, side core.OrderSide) (core.Record, error) {
	if e.symbol == "" {
		return nil, core.ErrNoSymbol
	}
	if !side.Valid() {
		return nil, fmt.Errorf("invalid order side %s", side)
	}
	result, err := e.call(ctx, core.OpGetOrderInfo, core.Params{
		"sym": e.symbol,
		"id":  id,
		"sd":  side.String(),
	})
	if err != nil {
		return nil, err
	}
	record, ok := result.(core.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return record, nil
}

// Wallet returns the available balance per currency.
func (e *Exchange) Wallet(ctx context.Context) (map[string]apd.Decimal, error) {
	result, err := e.call(ctx, core.OpGetWallet, nil)
	if err != nil {
		return nil, err
	}
	wallet, ok := result.(map[string]apd.Decimal)
	if !ok {
		return nil, fmt.Errorf("unexpected response type: %T", result)
	}
	return wallet, nil
}

// Balances returns available and reserved balances, one row per currency.
func (e *Exchange) Balances(ctx context.Context) (core.Table, error) {
	return e.callTable(ctx, core.OpGetBalances, nil)
}

func (e *Exchange) callTable(ctx context.Context, op core.Operation, params core.Params) (core.Table, error) {
	result, err := e.call(ctx, op, params)
	if err != nil {
		return core.Table{}, err
	}
	table, ok := result.(core.Table)
	if !ok {
		return core.Table{}, fmt.Errorf("unexpected response type: %T", result)
	}
	return table, nil
}

func (e *Exchange) call(ctx context.Context, op core.Operation, params core.Params) (any, error) {
	req, err := e.protocol.BuildRequest(ctx, op, params)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var resp *resty.Response
	if req.RequireAuth {
		resp, err = e.doSignedRequest(ctx, req)
	} else {
		resp, err = e.doRequest(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	result, err := e.protocol.ParseResponse(op, resp)
	if err != nil {
		return nil, fmt.Errorf("parse %s response: %w", op, err)
	}
	return result, nil
}

func (e *Exchange) doRequest(ctx context.Context, req *core.Request) (*resty.Response, error) {
	if e.httpClient.Closed() {
		return nil, core.ErrClientClosed
	}

	var resp *resty.Response
	var err error

	switch req.Method {
	case http.MethodGet:
		resp, err = e.httpClient.Get(ctx, req.Path, e.buildRequestOptions(req)...)
	case http.MethodPost:
		resp, err = e.httpClient.Post(ctx, req.Path, req.Body, e.buildRequestOptions(req)...)
	default:
		return nil, fmt.Errorf("unsupported method: %s", req.Method)
	}

	if err != nil {
		return nil, core.NewTransportError(exchangeName, core.ErrorTypeNetwork, 0,
			fmt.Sprintf("%s %s", req.Method, req.Path), err)
	}
	return resp, nil
}

// doSignedRequest fetches the server time, signs the record and sends it.
// A failed time fetch aborts the call before anything is signed.
func (e *Exchange) doSignedRequest(ctx context.Context, req *core.Request) (*resty.Response, error) {
	if e.signer == nil {
		return nil, core.ErrNoCredentials
	}

	ts, err := e.ServerTime(ctx)
	if err != nil {
		return nil, core.NewClockError(exchangeName, 0, err)
	}

	if err := e.protocol.SignRequest(req, ts, e.signer); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	return e.doRequest(ctx, req)
}

func (e *Exchange) buildRequestOptions(req *core.Request) []httpClient.RequestOption {
	var opts []httpClient.RequestOption

	if len(req.Headers) > 0 {
		opts = append(opts, httpClient.WithHeaders(req.Headers))
	}

	if len(req.Query) > 0 {
		query := make(map[string]string, len(req.Query))
		for k, v := range req.Query {
			query[k] = fmt.Sprint(v)
		}
		opts = append(opts, httpClient.WithQueryParams(query))
	}

	return opts
}

// Register creates an Exchange and registers it with the container under name.
// Distinct names let clients with different keys or pairs coexist.
func Register(container *exchange.Container, name string, config *core.Config, opts ...Option) error {
	ex, err := New(config, opts...)
	if err != nil {
		return fmt.Errorf("create bitkub exchange: %w", err)
	}
	container.Register(name, ex)
	return nil
}
