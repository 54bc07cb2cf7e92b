package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echo-vintage-ecard/models"
)

func envelopeMux(c *EnvelopeController) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/envelopes", c.List)
	mux.HandleFunc("POST /admin/envelopes", c.Create)
	mux.HandleFunc("GET /admin/envelopes/{id}", c.Get)
	mux.HandleFunc("PUT /admin/envelopes/{id}", c.Update)
	mux.HandleFunc("DELETE /admin/envelopes/{id}", c.Delete)
	mux.HandleFunc("GET /api/envelopes", c.ListActive)
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func listEnvelopes(t *testing.T, h http.Handler, path string) []models.Envelope {
	t.Helper()
	rec := do(t, h, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []models.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestEnvelope_CreateThenList(t *testing.T) {
	mux := envelopeMux(NewEnvelopeController(newMemEnvelopeRepo()))

	before := listEnvelopes(t, mux, "/admin/envelopes")

	rec := do(t, mux, http.MethodPost, "/admin/envelopes", `{"name":"Rose Garden","color":"#c0392b","pricePoints":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.True(t, created.IsActive)

	after := listEnvelopes(t, mux, "/admin/envelopes")
	require.Len(t, after, len(before)+1)
	matches := 0
	for _, e := range after {
		if e.Name == "Rose Garden" {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
}

func TestEnvelope_DuplicateNameConflicts(t *testing.T) {
	mux := envelopeMux(NewEnvelopeController(newMemEnvelopeRepo()))

	require.Equal(t, http.StatusCreated, do(t, mux, http.MethodPost, "/admin/envelopes", `{"name":"Kraft"}`).Code)
	rec := do(t, mux, http.MethodPost, "/admin/envelopes", `{"name":"Kraft"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
	assert.Len(t, listEnvelopes(t, mux, "/admin/envelopes"), 1)
}

func TestEnvelope_Validation(t *testing.T) {
	mux := envelopeMux(NewEnvelopeController(newMemEnvelopeRepo()))

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/admin/envelopes", `{"name":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/admin/envelopes", `{"name":"X","pricePoints":-1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/admin/envelopes", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/admin/envelopes/abc", "").Code)
}

func TestEnvelope_UpdateDeleteAndPublicList(t *testing.T) {
	mux := envelopeMux(NewEnvelopeController(newMemEnvelopeRepo()))
	require.Equal(t, http.StatusCreated, do(t, mux, http.MethodPost, "/admin/envelopes", `{"name":"Linen"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, mux, http.MethodPost, "/admin/envelopes", `{"name":"Velvet"}`).Code)

	rec := do(t, mux, http.MethodPut, "/admin/envelopes/2", `{"name":"Velvet","isActive":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	public := listEnvelopes(t, mux, "/api/envelopes")
	require.Len(t, public, 1)
	assert.Equal(t, "Linen", public[0].Name)

	assert.Equal(t, http.StatusNoContent, do(t, mux, http.MethodDelete, "/admin/envelopes/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodDelete, "/admin/envelopes/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodPut, "/admin/envelopes/99", `{"name":"Ghost"}`).Code)
}
