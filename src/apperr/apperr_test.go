package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden},
		{"conflict", Conflict("duplicate"), http.StatusConflict},
		{"internal", Internal(errors.New("boom"), "query failed"), http.StatusInternalServerError},
		{"plain error", errors.New("anything"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.True(t, IsKind(NotFound("x"), KindNotFound))
	assert.False(t, IsKind(NotFound("x"), KindConflict))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause, "query users")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Contains(t, err.Error(), "query users")
}

func TestKindOfWrappedError(t *testing.T) {
	inner := NotFound("budget gone")
	outer := Internal(inner, "load budget")

	// The outer kind wins; unwrapping still reaches the cause.
	assert.Equal(t, KindInternal, KindOf(outer))
	assert.True(t, errors.Is(outer, inner))
}

func TestMessageFormatting(t *testing.T) {
	err := Validation("category %s does not belong to budget %s", "cat-1", "budget-9")
	assert.Contains(t, err.Error(), "cat-1")
	assert.Contains(t, err.Error(), "budget-9")
}
