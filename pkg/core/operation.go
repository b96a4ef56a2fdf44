package core

// Operation represents a type of action that can be performed on an exchange.
type Operation int

// Operation constants define all supported exchange operations.
const (
	// OpGetServerTime retrieves the server clock used to stamp signed requests.
	OpGetServerTime Operation = iota
	// OpGetSymbols lists the tradable pairs.
	OpGetSymbols
	// OpGetTicker retrieves current ticker data, optionally for one symbol.
	OpGetTicker
	// OpPlaceBid submits a buy order.
	OpPlaceBid
	// OpPlaceAsk submits a sell order.
	OpPlaceAsk
	// OpCancelOrder cancels an existing order.
	OpCancelOrder
	// OpGetOpenOrders retrieves open orders for a symbol.
	OpGetOpenOrders
	// OpGetOrderHistory retrieves historical orders for a symbol.
	OpGetOrderHistory
	// OpGetOrderInfo retrieves details of a specific order.
	OpGetOrderInfo
	// OpGetWallet retrieves available balances.
	OpGetWallet
	// OpGetBalances retrieves available and reserved balances.
	OpGetBalances
	// OpGetPriceHistory retrieves candlestick data.
	OpGetPriceHistory
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return [...]string{
		"GET_SERVER_TIME",
		"GET_SYMBOLS",
		"GET_TICKER",
		"PLACE_BID",
		"PLACE_ASK",
		"CANCEL_ORDER",
		"GET_OPEN_ORDERS",
		"GET_ORDER_HISTORY",
		"GET_ORDER_INFO",
		"GET_WALLET",
		"GET_BALANCES",
		"GET_PRICE_HISTORY",
	}[o]
}
