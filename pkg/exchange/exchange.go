package exchange

import (
	"context"

	"github.com/cockroachdb/apd/v3"

	"bitkub/pkg/core"
)

// Exchange is the client surface for one account bound to one trading pair.
// Implementations hold no mutable state after construction, so a single value
// may be shared between goroutines.
type Exchange interface {
	Name() string
	Version() string

	ServerTime(ctx context.Context) (int64, error)
	Symbols(ctx context.Context) (core.Table, error)
	Ticker(ctx context.Context, symbol string) (*core.Ticker, error)
	Price(ctx context.Context) (apd.Decimal, error)
	PriceHistory(ctx context.Context, interval string, opts ...Option) (core.Table, error)

	PlaceOrder(ctx context.Context, req *OrderRequest) (*core.PlacedOrder, error)
	CancelOrder(ctx context.Context, id string, side core.OrderSide) error
	CancelAllOrders(ctx context.Context) ([]string, error)
	OpenOrders(ctx context.Context) (core.Table, error)
	OrderHistory(ctx context.Context, opts ...Option) (core.Table, error)
	OrderInfo(ctx context.Context, id string, side core.OrderSide) (core.Record, error)

	Wallet(ctx context.Context) (map[string]apd.Decimal, error)
	Balances(ctx context.Context) (core.Table, error)

	Close() error
}

// OrderRequest contains the parameters required to place a bid or an ask.
// For a bid Amount is quote currency to spend, for an ask it is base units to sell.
type OrderRequest struct {
	Symbol string
	Side   core.OrderSide
	Type   core.OrderType
	Amount apd.Decimal
	Rate   apd.Decimal
}
