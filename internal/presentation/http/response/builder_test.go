package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

type envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta"`
	Error   *struct {
		Kind    string         `json:"kind"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func record(t *testing.T, build func(c echo.Context) error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, build(c))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestBuildSuccess(t *testing.T) {
	rec, env := record(t, func(c echo.Context) error {
		return New(c).
			WithStatus(http.StatusCreated).
			WithData(map[string]string{"id": "o-1"}).
			WithMeta("count", 1).
			Build()
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.Equal(t, map[string]any{"id": "o-1"}, env.Data)
	assert.Equal(t, float64(1), env.Meta["count"])
}

func TestBuildErrorMapsKindToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"not found", errorbank.NotFound("order not found"), http.StatusNotFound, "not_found"},
		{"conflict", errorbank.Conflict("label already exists"), http.StatusConflict, "conflict"},
		{"bad request", errorbank.BadRequest("initials must be 2-3 letters"), http.StatusBadRequest, "bad_request"},
		{"unauthorized", errorbank.Unauthorized("invalid credentials"), http.StatusUnauthorized, "unauthorized"},
		{"concurrency", errorbank.Concurrency("allocation contention"), http.StatusConflict, "concurrency"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := record(t, func(c echo.Context) error {
				return New(c).WithError(tc.err).Build()
			})

			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.kind, env.Error.Kind)
		})
	}
}

func TestBuildErrorHidesUnknownCauses(t *testing.T) {
	rec, env := record(t, func(c echo.Context) error {
		return New(c).WithError(errors.New("pq: connection refused")).Build()
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "internal", env.Error.Kind)
	assert.Equal(t, "internal error", env.Error.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestBuildErrorCarriesDetails(t *testing.T) {
	_, env := record(t, func(c echo.Context) error {
		return New(c).
			WithError(errorbank.Conflict("label already exists", errorbank.WithDetail("label", "invoice"))).
			Build()
	})

	require.NotNil(t, env.Error)
	assert.Equal(t, "invoice", env.Error.Details["label"])
}
