package billing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("secret key")

	assert.Equal(t, "configuration error: missing secret key", err.Error())
	assert.True(t, IsConfigError(err))
	assert.True(t, IsConfigError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsProviderError(err))

	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "secret key", cfgErr.Item)
}

func TestProviderError(t *testing.T) {
	cause := errors.New("socket closed")

	withMessage := &ProviderError{Provider: "stripe", Op: "fetch subscription", Message: "No such customer", Err: cause}
	assert.Equal(t, "failed to fetch subscription: No such customer", withMessage.Error())
	assert.True(t, IsProviderError(withMessage))
	assert.False(t, IsConfigError(withMessage))
	assert.ErrorIs(t, withMessage, cause)

	withoutMessage := &ProviderError{Provider: "stripe", Op: "create portal session", Err: cause}
	assert.Equal(t, "failed to create portal session: socket closed", withoutMessage.Error())
}
