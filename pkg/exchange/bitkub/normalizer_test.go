package bitkub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitkub/internal/canonical"
	"bitkub/pkg/core"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, canonical.Unmarshal([]byte(raw), &out))
	return out
}

func TestNormalizer_Tickers(t *testing.T) {
	body := decode(t, `{
		"THB_BTC": {
			"id": 1, "last": 2000000.50, "lowestAsk": 2000010, "highestBid": 1999990,
			"percentChange": -1.25, "baseVolume": 12.5, "quoteVolume": 25000000,
			"isFrozen": 0, "high24hr": 2100000, "low24hr": 1900000
		}
	}`)

	tickers, err := NewNormalizer().NormalizeTickers(body)
	require.NoError(t, err)
	require.Contains(t, tickers, "THB_BTC")

	tk := tickers["THB_BTC"]
	assert.Equal(t, "THB_BTC", tk.Symbol)
	assert.Equal(t, int64(1), tk.ID)
	assert.Equal(t, "2000000.50", tk.Last.String())
	assert.Equal(t, "-1.25", tk.PercentChange.String())
	assert.Equal(t, "1900000", tk.Low24h.String())
	assert.False(t, tk.IsFrozen)
}

func TestNormalizer_PlacedOrder(t *testing.T) {
	body := decode(t, `{"result": {
		"id": 1, "hash": "fwQ6dnQWQPs4cbatF5Am2xCDP1J", "typ": "limit",
		"amt": 1000, "rat": 15000, "fee": 2.5, "cre": 2.5, "rec": 0.06666666, "ts": 1533834547
	}}`)

	order, err := NewNormalizer().NormalizePlacedOrder(body["result"], core.SideBuy)
	require.NoError(t, err)

	assert.Equal(t, "1", order.ID)
	assert.Equal(t, "fwQ6dnQWQPs4cbatF5Am2xCDP1J", order.Hash)
	assert.Equal(t, core.SideBuy, order.Side)
	assert.Equal(t, core.TypeLimit, order.Type)
	assert.Equal(t, "1000", order.Amount.String())
	assert.Equal(t, "0.06666666", order.Receive.String())
	assert.Equal(t, time.Unix(1533834547, 0).UTC(), order.Timestamp)
}

func TestNormalizer_PlacedOrder_NotObject(t *testing.T) {
	_, err := NewNormalizer().NormalizePlacedOrder([]any{}, core.SideSell)
	assert.Error(t, err)
}

func TestNormalizer_OpenOrdersTable(t *testing.T) {
	body := decode(t, `{"result": [
		{"id": 2, "hash": "fwQ6dnQWQPs4cbatFSJpMCcKTFR", "side": "SELL", "type": "limit",
		 "rate": 15000, "fee": 0.25, "credit": 0, "amount": 0.1, "receive": 1500, "parent_id": 1}
	]}`)

	table, err := NewNormalizer().NormalizeTable(body["result"], openOrderColumns)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "side", "type", "rate", "fee", "amount", "receive", "credit", "hash", "parent_id"}, table.Columns)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "SELL", table.Rows[0].String("side"))
	assert.Equal(t, json.Number("0.1"), table.Rows[0]["amount"])
}

func TestNormalizer_EmptyTable(t *testing.T) {
	table, err := NewNormalizer().NormalizeTable([]any{}, openOrderColumns)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, openOrderColumns, table.Columns)

	table, err = NewNormalizer().NormalizeTable(nil, symbolColumns)
	require.NoError(t, err)
	assert.NotNil(t, table.Rows)
}

func TestNormalizer_Wallet(t *testing.T) {
	body := decode(t, `{"result": {"THB": 188379.27, "BTC": 8.90397323, "ETH": 0}}`)

	wallet, err := NewNormalizer().NormalizeWallet(body["result"])
	require.NoError(t, err)

	assert.Len(t, wallet, 3)
	btc := wallet["BTC"]
	assert.Equal(t, "8.90397323", btc.String())
}

func TestNormalizer_Balances(t *testing.T) {
	body := decode(t, `{"result": {
		"THB": {"available": 188379.27, "reserved": 0},
		"BTC": {"available": 8.90397323, "reserved": 0.5}
	}}`)

	table, err := NewNormalizer().NormalizeBalances(body["result"])
	require.NoError(t, err)

	assert.Equal(t, balanceColumns, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "BTC", table.Rows[0].String("currency"))
	assert.Equal(t, "THB", table.Rows[1].String("currency"))

	reserved, err := table.Rows[0].Decimal("reserved")
	require.NoError(t, err)
	assert.Equal(t, "0.5", reserved.String())
}

func TestNormalizer_Candles(t *testing.T) {
	body := decode(t, `{
		"c": [1685000, 1680000], "h": [1685000, 1685000], "l": [1680000, 1670000],
		"o": [1680000, 1685000], "s": "ok", "t": [1633424400, 1633425300], "v": [4.4, 1.2]
	}`)

	table, err := NewNormalizer().NormalizeCandles(body)
	require.NoError(t, err)

	assert.Equal(t, candleColumns, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, json.Number("1633425300"), table.Rows[1]["t"])
	assert.Equal(t, json.Number("1.2"), table.Rows[1]["v"])
}

func TestNormalizer_Candles_NoData(t *testing.T) {
	table, err := NewNormalizer().NormalizeCandles(decode(t, `{"s": "no_data"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestNormalizer_Candles_Ragged(t *testing.T) {
	_, err := NewNormalizer().NormalizeCandles(decode(t, `{"t": [1, 2], "o": [1], "s": "ok"}`))
	assert.Error(t, err)
}
