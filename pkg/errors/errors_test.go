package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsType(t *testing.T) {
	err := NewNotFoundError("session")
	assert.True(t, IsType(err, ErrorTypeNotFound))
	assert.False(t, IsType(err, ErrorTypeConflict))

	wrapped := fmt.Errorf("loading session: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeNotFound), "IsType sees through wrapping")

	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeNotFound))
	assert.False(t, IsType(nil, ErrorTypeNotFound))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypePhaseGate, TypeOf(NewPhaseGateError("gate")))
	assert.Equal(t, ErrorTypeInternal, TypeOf(fmt.Errorf("unknown")), "unknown errors count as internal")
}

func TestHTTPStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewNotFoundError("session"), http.StatusNotFound},
		{NewConflictError("taken"), http.StatusConflict},
		{NewUnauthorizedError("denied"), http.StatusForbidden},
		{NewInvalidPhaseError("wrong phase"), http.StatusConflict},
		{NewInvalidTransitionError("terminal"), http.StatusConflict},
		{NewPhaseGateError("incomplete"), http.StatusConflict},
		{NewInternalError("boom"), http.StatusInternalServerError},
		{NewUnavailableError("store"), http.StatusServiceUnavailable},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, HTTPStatusOf(c.err), "%v", c.err)
	}
}

func TestAppError_CauseChain(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	err := NewInternalError("store write failed").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "socket closed")
}

func TestAppError_Details(t *testing.T) {
	err := NewPhaseGateError("not everyone is done").
		WithDetails(map[string]interface{}{"incomplete": []string{"p1"}}).
		WithCode("COMPLETION_GATE")

	assert.Equal(t, "COMPLETION_GATE", err.Code)
	assert.Equal(t, []string{"p1"}, err.Details["incomplete"])
}
