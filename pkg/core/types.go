package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// OrderSide represents the direction of an order (buy or sell).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase an asset.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell an asset.
	SideSell
)

// String returns the wire form of the order side ("buy" or "sell").
func (s OrderSide) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	}
	return fmt.Sprintf("OrderSide(%d)", int(s))
}

// Valid reports whether s is a known side.
func (s OrderSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// ParseOrderSide parses a side in either case.
func ParseOrderSide(s string) (OrderSide, error) {
	switch strings.ToLower(s) {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	}
	return 0, fmt.Errorf("unknown order side %q", s)
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
// It accepts both uppercase and lowercase formats.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	side, err := ParseOrderSide(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// OrderType represents the type of order to place on an exchange.
type OrderType int

// Order type constants define how an order is executed.
const (
	// TypeLimit executes at a specified rate or better.
	TypeLimit OrderType = iota
	// TypeMarket executes immediately at the best available rate.
	TypeMarket
)

// String returns the wire form of the order type.
func (t OrderType) String() string {
	switch t {
	case TypeLimit:
		return "limit"
	case TypeMarket:
		return "market"
	}
	return fmt.Sprintf("OrderType(%d)", int(t))
}

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == TypeLimit || t == TypeMarket
}

// ParseOrderType parses an order type in either case.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(s) {
	case "limit":
		return TypeLimit, nil
	case "market":
		return TypeMarket, nil
	}
	return 0, fmt.Errorf("unknown order type %q", s)
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	typ, err := ParseOrderType(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*t = typ
	return nil
}

// Ticker represents market data for a trading pair.
type Ticker struct {
	// Symbol is the trading pair identifier (e.g., "THB_BTC").
	Symbol string `json:"symbol"`
	// ID is the exchange-assigned market identifier.
	ID int64 `json:"id"`
	// Last is the price of the most recent trade.
	Last apd.Decimal `json:"last"`
	// LowestAsk is the lowest price a seller is willing to accept.
	LowestAsk apd.Decimal `json:"lowest_ask"`
	// HighestBid is the highest price a buyer is willing to pay.
	HighestBid apd.Decimal `json:"highest_bid"`
	// PercentChange is the 24 hour price change in percent.
	PercentChange apd.Decimal `json:"percent_change"`
	BaseVolume    apd.Decimal `json:"base_volume"`
	QuoteVolume   apd.Decimal `json:"quote_volume"`
	High24h       apd.Decimal `json:"high_24h"`
	Low24h        apd.Decimal `json:"low_24h"`
	IsFrozen      bool        `json:"is_frozen"`
}

// PlacedOrder is the server acknowledgement of a bid or ask.
type PlacedOrder struct {
	ID        string      `json:"id"`
	Hash      string      `json:"hash"`
	Symbol    string      `json:"symbol"`
	Side      OrderSide   `json:"side"`
	Type      OrderType   `json:"type"`
	Amount    apd.Decimal `json:"amount"`
	Rate      apd.Decimal `json:"rate"`
	Fee       apd.Decimal `json:"fee"`
	Credit    apd.Decimal `json:"credit"`
	Receive   apd.Decimal `json:"receive"`
	Timestamp time.Time   `json:"timestamp"`
}

// Balance represents account balance for a single currency.
type Balance struct {
	Currency  string      `json:"currency"`
	Available apd.Decimal `json:"available"`
	Reserved  apd.Decimal `json:"reserved"`
}

// Record is one row of a server result. Numbers are kept as json.Number so
// that no precision is lost before the caller picks a representation.
type Record map[string]any

// String returns the field as text, or "" when absent.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the field as an integer.
func (r Record) Int64(key string) (int64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("field %s missing", key)
	}
	n, err := strconv.ParseInt(r.String(key), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", key, err)
	}
	return n, nil
}

// Decimal returns the field as a decimal.
func (r Record) Decimal(key string) (apd.Decimal, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return apd.Decimal{}, fmt.Errorf("field %s missing", key)
	}
	d, err := ParseDecimal(r.String(key))
	if err != nil {
		return apd.Decimal{}, fmt.Errorf("field %s: %w", key, err)
	}
	return d, nil
}

// Table is an ordered sequence of uniformly shaped records.
type Table struct {
	// Columns lists the expected columns of the operation followed by any
	// extra fields the server returned, sorted.
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// NewTable builds a table from rows, deriving Columns from the expected set
// and the keys actually present.
func NewTable(expected []string, rows []Record) Table {
	columns := slices.Clone(expected)
	var extra []string
	for _, row := range rows {
		for k := range row {
			if !slices.Contains(columns, k) && !slices.Contains(extra, k) {
				extra = append(extra, k)
			}
		}
	}
	slices.Sort(extra)
	if rows == nil {
		rows = []Record{}
	}
	return Table{
		Columns: append(columns, extra...),
		Rows:    rows,
	}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Column returns the values of one column, nil for rows lacking it.
func (t Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[name]
	}
	return out
}

// ParseDecimal parses a decimal string such as "0.00012" or "1e-3".
func ParseDecimal(s string) (apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return apd.Decimal{}, err
	}
	return *d, nil
}
