package errorbank

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		code   codes.Code
	}{
		{BadRequest("bad"), http.StatusBadRequest, codes.InvalidArgument},
		{NotFound("missing"), http.StatusNotFound, codes.NotFound},
		{Conflict("taken"), http.StatusConflict, codes.AlreadyExists},
		{Unauthorized("who"), http.StatusUnauthorized, codes.Unauthenticated},
		{Forbidden("no"), http.StatusForbidden, codes.PermissionDenied},
		{Concurrency("contended"), http.StatusConflict, codes.Aborted},
		{Internal("boom"), http.StatusInternalServerError, codes.Internal},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), "kind=%s", tc.err.Kind())
		assert.Equal(t, tc.code, tc.err.GRPCCode(), "kind=%s", tc.err.Kind())
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(Concurrency("contended")))
	assert.False(t, Retryable(Conflict("taken")))
	assert.False(t, Retryable(errors.New("plain")))
	assert.False(t, Retryable(nil))
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("dial timeout")
	appErr := From(cause)
	require.NotNil(t, appErr)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.True(t, errors.Is(appErr, cause))
}

func TestFromPreservesAppErrors(t *testing.T) {
	original := NotFound("order not found", WithDetail("id", "ord-1"))
	appErr := From(original)
	assert.Same(t, original, appErr)
	assert.Equal(t, "ord-1", appErr.Details()["id"])
}

func TestCauseUnwrapping(t *testing.T) {
	sentinel := errors.New("row locked")
	appErr := Concurrency("allocation contended", WithCause(sentinel))
	assert.True(t, errors.Is(appErr, sentinel))
	assert.Contains(t, appErr.Error(), "row locked")
}
