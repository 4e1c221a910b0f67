package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"authentication", Authentication("who are you"), http.StatusUnauthorized},
		{"authorization", Authorization("not allowed"), http.StatusForbidden},
		{"conflict", Conflict("already taken"), http.StatusConflict},
		{"internal", Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{"plain error", errors.New("anything"), http.StatusInternalServerError},
		{"wrapped app error", fmt.Errorf("context: %w", NotFound("missing")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "bad input", PublicMessage(Validation("bad input")))
	assert.Equal(t, "already taken", PublicMessage(Conflict("already taken")))

	// Internal details never leak to clients
	assert.Equal(t, "Internal server error", PublicMessage(Internal("db query failed", errors.New("connection refused"))))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw error")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("db query failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}
