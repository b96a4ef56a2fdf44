package core

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ProductionHost is the public Bitkub REST endpoint.
const ProductionHost = "https://api.bitkub.com"

// Credentials holds API authentication credentials for an exchange.
type Credentials struct {
	// APIKey is the public API key identifier, sent as a request header.
	APIKey string `json:"api_key" validate:"required"`
	// SecretKey is the private key used for signing requests. It is never transmitted.
	SecretKey string `json:"secret_key" validate:"required"`
}

// Config contains all configuration options for an exchange client.
type Config struct {
	Exchange    string       `json:"exchange" validate:"required"`
	Host        string       `json:"host" validate:"required,url"`
	Credentials *Credentials `json:"credentials,omitempty" validate:"omitempty"`

	// Symbol is the trading pair bound to the client (e.g. "THB_BTC").
	// Most signed calls use it as their sym field.
	Symbol string `json:"symbol"`

	// Timeout is the maximum duration for a single HTTP round-trip.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config for the production Bitkub host with a 10s timeout
// and info logging. Credentials and symbol are left empty.
func DefaultConfig() *Config {
	return &Config{
		Exchange: "bitkub",
		Host:     ProductionHost,
		Timeout:  10 * time.Second,
		LogLevel: "info",
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithHost overrides the API host and returns the config for chaining.
func (c *Config) WithHost(host string) *Config {
	c.Host = host
	return c
}

// WithSymbol binds the trading pair and returns the config for chaining.
func (c *Config) WithSymbol(symbol string) *Config {
	c.Symbol = symbol
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}
