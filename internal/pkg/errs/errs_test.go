package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError_KnownCode(t *testing.T) {
	err := NewError(ErrDuplicateEmail)

	assert.Equal(t, ErrDuplicateEmail, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.NotEmpty(t, err.Message)
}

func TestNewError_StatusOverrides(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, NewError(ErrUnauthorized).Status)
	assert.Equal(t, http.StatusNotFound, NewError(ErrUserNotFound).Status)
	assert.Equal(t, http.StatusNotFound, NewError(ErrReceiverNotFound).Status)
	assert.Equal(t, http.StatusInternalServerError, NewError(ErrStoreFailure).Status)
	assert.Equal(t, http.StatusTooManyRequests, NewError(ErrRateLimitExceeded).Status)
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	err := NewError(99999)

	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCustomError_Error(t *testing.T) {
	err := NewError(ErrInvalidCredentials)
	assert.Contains(t, err.Error(), err.Message)
}
