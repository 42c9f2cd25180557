package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderNotConfigured is returned when a provider is not properly configured
	ErrProviderNotConfigured = errors.New("billing provider not configured")

	// ErrConfiguration is matched by every *ConfigError
	ErrConfiguration = errors.New("billing configuration error")

	// ErrProviderAPIError is matched by every *ProviderError
	ErrProviderAPIError = errors.New("billing provider API error")

	// ErrCustomerNotFound is returned when a caller has no billing account in the provider
	ErrCustomerNotFound = errors.New("customer not found in billing provider")

	// ErrUnauthenticated is returned when an operation is invoked without a caller
	ErrUnauthenticated = errors.New("caller not authenticated")
)

// ConfigError reports a required setting that is absent at call time.
// Item names the class of the setting ("secret key"), never its value.
type ConfigError struct {
	Item string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: missing %s", e.Item)
}

// Is makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigError returns a *ConfigError for the given item.
func NewConfigError(item string) error {
	return &ConfigError{Item: item}
}

// ProviderError reports that the payment provider rejected or could not fulfil a call.
type ProviderError struct {
	// Provider is the provider name ("stripe")
	Provider string

	// Op identifies the failed operation, e.g. "fetch subscription"
	Op string

	// Message is the provider's own message, if it supplied one
	Message string

	// Err is the underlying SDK or transport error
	Err error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("failed to %s: %s", e.Op, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrProviderAPIError) hold.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderAPIError
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsProviderError reports whether err is (or wraps) a provider error.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProviderAPIError)
}
