package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"get_server_time", OpGetServerTime, "GET_SERVER_TIME"},
		{"get_symbols", OpGetSymbols, "GET_SYMBOLS"},
		{"get_ticker", OpGetTicker, "GET_TICKER"},
		{"place_bid", OpPlaceBid, "PLACE_BID"},
		{"place_ask", OpPlaceAsk, "PLACE_ASK"},
		{"cancel_order", OpCancelOrder, "CANCEL_ORDER"},
		{"get_open_orders", OpGetOpenOrders, "GET_OPEN_ORDERS"},
		{"get_order_history", OpGetOrderHistory, "GET_ORDER_HISTORY"},
		{"get_order_info", OpGetOrderInfo, "GET_ORDER_INFO"},
		{"get_wallet", OpGetWallet, "GET_WALLET"},
		{"get_balances", OpGetBalances, "GET_BALANCES"},
		{"get_price_history", OpGetPriceHistory, "GET_PRICE_HISTORY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}
