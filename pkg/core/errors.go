package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of an exchange error.
type ErrorType int

// Error type constants categorize errors for proper handling by callers.
const (
	// ErrorTypeUnknown indicates an unclassified error, including unrecognized server codes.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates the request failed or returned a non-2xx status without a usable body.
	ErrorTypeNetwork
	// ErrorTypeDecode indicates the response body could not be decoded.
	ErrorTypeDecode
	// ErrorTypeClock indicates the server time could not be obtained.
	ErrorTypeClock
	// ErrorTypeAuthentication indicates invalid credentials, signature or timestamp.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeAmountTooLow indicates the order amount is below the exchange minimum.
	ErrorTypeAmountTooLow
	// ErrorTypeInsufficientFunds indicates account lacks required balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order cannot be cancelled or looked up.
	ErrorTypeInvalidOrder
	// ErrorTypeServerError indicates a server-side error.
	ErrorTypeServerError
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	if t < ErrorTypeUnknown || t > ErrorTypeServerError {
		return "UNKNOWN"
	}
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"DECODE",
		"CLOCK",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"AMOUNT_TOO_LOW",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
		"SERVER_ERROR",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNoCredentials is returned when a signed call is made without API credentials.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrNoSymbol is returned when a call needs a trading pair and none is bound.
	ErrNoSymbol = errors.New("no symbol configured")

	// ErrAmountTooLow matches domain errors with code 15.
	ErrAmountTooLow = errors.New("amount too low")
	// ErrInsufficientBalance matches domain errors with code 18.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidCancelOrder matches domain errors with code 21.
	ErrInvalidCancelOrder = errors.New("invalid order for cancellation")
)

// ExchangeError represents a structured error returned from an exchange or its transport.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code from the response, zero if none was received.
	StatusCode int `json:"status_code"`
	// Code is the numeric error code returned by the server, zero for non-domain errors.
	Code int `json:"code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Exchange identifies which exchange returned this error.
	Exchange string `json:"exchange"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface for ExchangeError.
func (e *ExchangeError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Code != 0 {
		return fmt.Sprintf("[%s] %s (%d/%d): %s",
			e.Exchange, e.Type, e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("[%s] %s (%d): %s",
		e.Exchange, e.Type, e.StatusCode, msg)
}

// Unwrap returns the underlying cause.
func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches one of the named domain sentinels.
func (e *ExchangeError) Is(target error) bool {
	switch target {
	case ErrAmountTooLow:
		return e.Type == ErrorTypeAmountTooLow
	case ErrInsufficientBalance:
		return e.Type == ErrorTypeInsufficientFunds
	case ErrInvalidCancelOrder:
		return e.Code == CodeInvalidCancelOrder
	}
	return false
}

// NewExchangeError creates a new ExchangeError with the specified details.
// The timestamp is automatically set to the current time.
func NewExchangeError(exchange string, errorType ErrorType, statusCode int, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// NewDomainError creates an ExchangeError for a nonzero server error code.
// The type and message come from the Bitkub error table.
func NewDomainError(exchange string, statusCode, code int) *ExchangeError {
	return &ExchangeError{
		Type:       ErrorTypeForCode(code),
		StatusCode: statusCode,
		Code:       code,
		Message:    MessageForCode(code),
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// NewTransportError wraps a request or decode failure.
func NewTransportError(exchange string, errorType ErrorType, statusCode int, message string, cause error) *ExchangeError {
	e := NewExchangeError(exchange, errorType, statusCode, message)
	e.Err = cause
	return e
}

// NewClockError wraps a failure to obtain the server timestamp.
func NewClockError(exchange string, statusCode int, cause error) *ExchangeError {
	e := NewExchangeError(exchange, ErrorTypeClock, statusCode, "fetch server time")
	e.Err = cause
	return e
}

func asExchangeError(err error) (*ExchangeError, bool) {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsTransportError returns true if the request failed before a server verdict was decoded.
func IsTransportError(err error) bool {
	if e, ok := asExchangeError(err); ok {
		return e.Type == ErrorTypeNetwork || e.Type == ErrorTypeDecode
	}
	return false
}

// IsClockError returns true if the server timestamp could not be obtained.
func IsClockError(err error) bool {
	if e, ok := asExchangeError(err); ok {
		return e.Type == ErrorTypeClock
	}
	return false
}

// IsDomainError returns true if the server answered with a nonzero error code.
func IsDomainError(err error) bool {
	if e, ok := asExchangeError(err); ok {
		return e.Code != 0
	}
	return false
}

// DomainCode returns the raw server error code carried by err.
func DomainCode(err error) (int, bool) {
	if e, ok := asExchangeError(err); ok && e.Code != 0 {
		return e.Code, true
	}
	return 0, false
}

// IsAuthenticationError returns true if the error is an authentication failure.
// Authentication errors require credential validation and are not retryable.
func IsAuthenticationError(err error) bool {
	if e, ok := asExchangeError(err); ok {
		return e.Type == ErrorTypeAuthentication
	}
	return false
}

// IsTerminalError returns true if the error indicates a terminal condition.
// Terminal errors will not succeed on a repeated call with the same input.
func IsTerminalError(err error) bool {
	if e, ok := asExchangeError(err); ok {
		return e.Type == ErrorTypeInsufficientFunds ||
			e.Type == ErrorTypeAmountTooLow ||
			e.Type == ErrorTypeInvalidOrder
	}
	return false
}
