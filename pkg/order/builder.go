// Package order builds validated bid and ask requests.
package order

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-playground/validator/v10"

	"bitkub/pkg/core"
	"bitkub/pkg/exchange"
)

var validate = validator.New()

// Builder provides a fluent interface for constructing order requests.
// It keeps the first parse error and reports it on Build.
//
// Example:
//
//	req, err := order.NewBuilder("THB_XLM").
//	    Buy().
//	    Limit().
//	    Amount("100").
//	    Rate("5.5").
//	    Build()
type Builder struct {
	req *exchange.OrderRequest
	err error
}

// NewBuilder creates a builder for symbol. An empty symbol leaves the choice
// to the client's bound pair.
func NewBuilder(symbol string) *Builder {
	return &Builder{
		req: &exchange.OrderRequest{
			Symbol: symbol,
			Type:   core.TypeLimit,
		},
	}
}

// Side sets the order side.
func (b *Builder) Side(side core.OrderSide) *Builder {
	if b.err != nil {
		return b
	}
	b.req.Side = side
	return b
}

func (b *Builder) Buy() *Builder {
	return b.Side(core.SideBuy)
}

func (b *Builder) Sell() *Builder {
	return b.Side(core.SideSell)
}

// Type sets the order type.
func (b *Builder) Type(orderType core.OrderType) *Builder {
	if b.err != nil {
		return b
	}
	b.req.Type = orderType
	return b
}

func (b *Builder) Market() *Builder {
	return b.Type(core.TypeMarket)
}

func (b *Builder) Limit() *Builder {
	return b.Type(core.TypeLimit)
}

// Amount sets the amount from text. For a bid it is quote currency to spend,
// for an ask base units to sell.
func (b *Builder) Amount(amount string) *Builder {
	if b.err != nil {
		return b
	}
	if _, _, err := b.req.Amount.SetString(amount); err != nil {
		b.err = fmt.Errorf("parse amount: %w", err)
	}
	return b
}

func (b *Builder) AmountDecimal(amount apd.Decimal) *Builder {
	if b.err != nil {
		return b
	}
	b.req.Amount.Set(&amount)
	return b
}

// Rate sets the limit rate from text.
func (b *Builder) Rate(rate string) *Builder {
	if b.err != nil {
		return b
	}
	if _, _, err := b.req.Rate.SetString(rate); err != nil {
		b.err = fmt.Errorf("parse rate: %w", err)
	}
	return b
}

func (b *Builder) RateDecimal(rate apd.Decimal) *Builder {
	if b.err != nil {
		return b
	}
	b.req.Rate.Set(&rate)
	return b
}

// Build validates and returns the request.
func (b *Builder) Build() (*exchange.OrderRequest, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := validateRequest(b.req); err != nil {
		return nil, err
	}
	return b.req, nil
}

func validateRequest(req *exchange.OrderRequest) error {
	if err := validate.Var(int(req.Side), "oneof=0 1"); err != nil {
		return fmt.Errorf("invalid order side")
	}
	if err := validate.Var(int(req.Type), "oneof=0 1"); err != nil {
		return fmt.Errorf("invalid order type")
	}

	if req.Amount.Form != apd.Finite || req.Amount.IsZero() || req.Amount.Negative {
		return fmt.Errorf("amount must be positive")
	}

	switch req.Type {
	case core.TypeLimit:
		if req.Rate.Form != apd.Finite || req.Rate.IsZero() || req.Rate.Negative {
			return fmt.Errorf("rate must be positive for limit orders")
		}
	case core.TypeMarket:
		if req.Rate.Negative {
			return fmt.Errorf("rate must not be negative")
		}
	}
	return nil
}
