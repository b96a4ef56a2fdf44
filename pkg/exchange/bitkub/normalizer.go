package bitkub

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/cockroachdb/apd/v3"

	"bitkub/pkg/core"
)

var (
	symbolColumns       = []string{"id", "symbol", "info"}
	openOrderColumns    = []string{"id", "side", "type", "rate", "fee", "amount", "receive"}
	orderHistoryColumns = []string{"txn_id", "order_id", "hash", "side", "type", "rate", "fee", "credit", "amount", "ts"}
	balanceColumns      = []string{"currency", "available", "reserved"}
	candleColumns       = []string{"t", "o", "h", "l", "c", "v"}
)

// Normalizer converts decoded Bitkub payloads into core types.
type Normalizer struct{}

// NewNormalizer creates a new Bitkub normalizer instance.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeTable converts a result array of objects into a table.
func (n *Normalizer) NormalizeTable(result any, expected []string) (core.Table, error) {
	rows, err := toRecords(result)
	if err != nil {
		return core.Table{}, err
	}
	return core.NewTable(expected, rows), nil
}

// NormalizeRecord converts a single result object.
func (n *Normalizer) NormalizeRecord(result any) (core.Record, error) {
	obj, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object result, got %T", result)
	}
	return core.Record(obj), nil
}

// NormalizeTickers converts the symbol keyed ticker map.
func (n *Normalizer) NormalizeTickers(body map[string]any) (map[string]*core.Ticker, error) {
	out := make(map[string]*core.Ticker, len(body))
	for sym, raw := range body {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ticker, err := n.normalizeTicker(sym, core.Record(obj))
		if err != nil {
			return nil, fmt.Errorf("ticker %s: %w", sym, err)
		}
		out[sym] = ticker
	}
	return out, nil
}

func (n *Normalizer) normalizeTicker(sym string, r core.Record) (*core.Ticker, error) {
	t := &core.Ticker{Symbol: sym}
	if _, ok := r["id"]; ok {
		id, err := r.Int64("id")
		if err != nil {
			return nil, err
		}
		t.ID = id
	}

	fields := []struct {
		key string
		dst *apd.Decimal
	}{
		{"last", &t.Last},
		{"lowestAsk", &t.LowestAsk},
		{"highestBid", &t.HighestBid},
		{"percentChange", &t.PercentChange},
		{"baseVolume", &t.BaseVolume},
		{"quoteVolume", &t.QuoteVolume},
		{"high24hr", &t.High24h},
		{"low24hr", &t.Low24h},
	}
	for _, f := range fields {
		if err := optionalDecimal(r, f.key, f.dst); err != nil {
			return nil, err
		}
	}

	switch v := r["isFrozen"].(type) {
	case bool:
		t.IsFrozen = v
	case json.Number:
		t.IsFrozen = v.String() != "0"
	}
	return t, nil
}

// NormalizePlacedOrder converts a place-bid or place-ask result.
func (n *Normalizer) NormalizePlacedOrder(result any, side core.OrderSide) (*core.PlacedOrder, error) {
	r, err := n.NormalizeRecord(result)
	if err != nil {
		return nil, err
	}

	order := &core.PlacedOrder{
		ID:   r.String("id"),
		Hash: r.String("hash"),
		Side: side,
	}
	if typ := r.String("typ"); typ != "" {
		t, err := core.ParseOrderType(typ)
		if err != nil {
			return nil, err
		}
		order.Type = t
	}

	fields := []struct {
		key string
		dst *apd.Decimal
	}{
		{"amt", &order.Amount},
		{"rat", &order.Rate},
		{"fee", &order.Fee},
		{"cre", &order.Credit},
		{"rec", &order.Receive},
	}
	for _, f := range fields {
		if err := optionalDecimal(r, f.key, f.dst); err != nil {
			return nil, err
		}
	}

	if _, ok := r["ts"]; ok {
		ts, err := r.Int64("ts")
		if err != nil {
			return nil, err
		}
		order.Timestamp = time.Unix(ts, 0).UTC()
	}
	return order, nil
}

// NormalizeWallet converts the currency keyed available balances.
func (n *Normalizer) NormalizeWallet(result any) (map[string]apd.Decimal, error) {
	r, err := n.NormalizeRecord(result)
	if err != nil {
		return nil, err
	}
	out := make(map[string]apd.Decimal, len(r))
	for cur := range r {
		d, err := r.Decimal(cur)
		if err != nil {
			return nil, err
		}
		out[cur] = d
	}
	return out, nil
}

// NormalizeBalances flattens {CUR: {available, reserved}} into rows sorted by currency.
func (n *Normalizer) NormalizeBalances(result any) (core.Table, error) {
	r, err := n.NormalizeRecord(result)
	if err != nil {
		return core.Table{}, err
	}

	currencies := make([]string, 0, len(r))
	for cur := range r {
		currencies = append(currencies, cur)
	}
	slices.Sort(currencies)

	rows := make([]core.Record, 0, len(currencies))
	for _, cur := range currencies {
		obj, ok := r[cur].(map[string]any)
		if !ok {
			return core.Table{}, fmt.Errorf("balance %s: expected object, got %T", cur, r[cur])
		}
		row := core.Record{"currency": cur}
		for k, v := range obj {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return core.NewTable(balanceColumns, rows), nil
}

// NormalizeCandles zips the parallel t/o/h/l/c/v arrays into rows.
// A status of "no_data" yields an empty table.
func (n *Normalizer) NormalizeCandles(body map[string]any) (core.Table, error) {
	if s, _ := body["s"].(string); s == "no_data" {
		return core.NewTable(candleColumns, nil), nil
	}

	series := make(map[string][]any, len(candleColumns))
	length := -1
	for _, col := range candleColumns {
		raw, ok := body[col]
		if !ok {
			continue
		}
		values, ok := raw.([]any)
		if !ok {
			return core.Table{}, fmt.Errorf("candle column %s: expected array, got %T", col, raw)
		}
		if length >= 0 && len(values) != length {
			return core.Table{}, fmt.Errorf("candle column %s has %d values, want %d", col, len(values), length)
		}
		length = len(values)
		series[col] = values
	}

	rows := make([]core.Record, 0, max(length, 0))
	for i := 0; i < length; i++ {
		row := make(core.Record, len(series))
		for col, values := range series {
			row[col] = values[i]
		}
		rows = append(rows, row)
	}
	return core.NewTable(candleColumns, rows), nil
}

func toRecords(result any) ([]core.Record, error) {
	if result == nil {
		return nil, nil
	}
	items, ok := result.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array result, got %T", result)
	}
	rows := make([]core.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d: expected object, got %T", i, item)
		}
		rows = append(rows, core.Record(obj))
	}
	return rows, nil
}

func optionalDecimal(r core.Record, key string, dst *apd.Decimal) error {
	if v, ok := r[key]; !ok || v == nil {
		return nil
	}
	d, err := r.Decimal(key)
	if err != nil {
		return err
	}
	dst.Set(&d)
	return nil
}
