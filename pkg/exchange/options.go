package exchange

import (
	"time"
)

type Option func(*Options)

// Options carries the optional query inputs of history calls.
type Options struct {
	Page      int
	Limit     int
	StartTime time.Time
	EndTime   time.Time
}

// WithPage selects a result page of order history.
func WithPage(page int) Option {
	return func(o *Options) {
		o.Page = page
	}
}

func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// WithTimeRange bounds order history and price history. A zero bound is omitted.
func WithTimeRange(start, end time.Time) Option {
	return func(o *Options) {
		o.StartTime = start
		o.EndTime = end
	}
}

func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
