package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
)

type assignBody struct {
	SupplierID string `json:"supplier_id" validate:"required,uuid"`
}

func TestDecodeJSONBody(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"supplier_id":"`+id+`"}`))
	var body assignBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, id, body.SupplierID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	err := DecodeJSONBody(req, &assignBody{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"supplier_id": "is required"}, typed.Details())

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"supplier_id":"x","extra":1}`))
	assert.True(t, pkgerrors.HasCode(DecodeJSONBody(req, &assignBody{}), pkgerrors.CodeValidation))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=3", nil)
	v, err := ParseQueryInt(req, "limit", 5, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit", 5, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=0", nil), "limit", 5, 1, 50)
	assert.Error(t, err)
	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=abc", nil), "limit", 5, 1, 50)
	assert.Error(t, err)
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("quoteId", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := ParseUUIDParam(req, "quoteId", "quote id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(req, "orderId", "order id")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryBool(t *testing.T) {
	v, err := ParseQueryBool(httptest.NewRequest(http.MethodGet, "/?dry_run=true", nil), "dry_run")
	require.NoError(t, err)
	assert.True(t, v)

	_, err = ParseQueryBool(httptest.NewRequest(http.MethodGet, "/?dry_run=maybe", nil), "dry_run")
	assert.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "denim", SanitizeString("  denim  ", 0))
	assert.Equal(t, "den", SanitizeString("denim", 3))
}
