package core

import (
	"context"

	"resty.dev/v3"
)

// Signer produces request signatures from a record.
type Signer interface {
	// APIKey returns the public key sent with authenticated requests.
	APIKey() string
	// Sign returns the hex signature of the record's canonical serialization.
	Sign(record map[string]any) (string, error)
}

// Protocol defines the interface for exchange-specific protocol implementations.
// Each exchange must implement this interface to handle request building,
// request signing and response parsing.
type Protocol interface {
	// Name returns the exchange identifier (e.g., "bitkub").
	Name() string

	// Version returns the API version being used.
	Version() string

	// BuildRequest constructs an HTTP request for the specified operation.
	// Authenticated requests carry their unsigned record as Body.
	BuildRequest(ctx context.Context, op Operation, params Params) (*Request, error)

	// SignRequest stamps the request record with the server timestamp, signs it,
	// attaches the signature and sets the authentication headers.
	SignRequest(req *Request, ts int64, signer Signer) error

	// ParseResponse deserializes the HTTP response and normalizes it to canonical types.
	// The op parameter specifies which operation was performed.
	ParseResponse(op Operation, resp *resty.Response) (any, error)

	// SupportedOperations returns the list of operations this protocol supports.
	SupportedOperations() []Operation
}
