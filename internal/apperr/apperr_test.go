package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:          http.StatusBadRequest,
		CodeUnauthorized:        http.StatusUnauthorized,
		CodeForbidden:           http.StatusForbidden,
		CodeNotFound:            http.StatusNotFound,
		CodeAlreadyExists:       http.StatusConflict,
		CodeValidation:          http.StatusUnprocessableEntity,
		CodeInternalServerError: http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "", nil).Status(), string(code))
	}
	assert.Equal(t, http.StatusInternalServerError, New(Code("BOGUS"), "x", nil).Status())
}

func TestDefaultMessages(t *testing.T) {
	assert.Equal(t, "Unauthorized access. Please log in to continue", Unauthorized("").Message)
	assert.Equal(t, "custom", Forbidden("custom").Message)
	assert.Equal(t, DefaultMessage(CodeInternalServerError), Internal().Message)
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("service.Login: %w", NotFound("nope"))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, e.Code)
	assert.True(t, Is(wrapped, CodeNotFound))
	assert.False(t, Is(wrapped, CodeForbidden))

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
