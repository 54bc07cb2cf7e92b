package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

type memDraftRepo struct {
	drafts map[int64]models.CardDraft
}

func (m *memDraftRepo) Upsert(_ context.Context, userID int64, step int, data json.RawMessage) (*models.CardDraft, error) {
	d := models.CardDraft{ID: userID, UserID: userID, Step: step, Data: data, UpdatedAt: time.Now()}
	m.drafts[userID] = d
	return &d, nil
}

func (m *memDraftRepo) GetByUserID(_ context.Context, userID int64) (*models.CardDraft, error) {
	d, ok := m.drafts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (m *memDraftRepo) DeleteByUserID(_ context.Context, userID int64) error {
	if _, ok := m.drafts[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.drafts, userID)
	return nil
}

func TestDraft_SaveLoadDelete(t *testing.T) {
	repo := &memDraftRepo{drafts: map[int64]models.CardDraft{}}
	c := NewDraftController(repo)
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/drafts/{userId}", c.Save)
	mux.HandleFunc("GET /api/drafts/{userId}", c.Get)
	mux.HandleFunc("DELETE /api/drafts/{userId}", c.Delete)

	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPut, "/api/drafts/4", `{"step":2,"data":{"recipientName":"Bo"}}`).Code)
	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPut, "/api/drafts/4", `{"step":3,"data":{"recipientName":"Bruno"}}`).Code)

	rec := do(t, mux, http.MethodGet, "/api/drafts/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var d models.CardDraft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 3, d.Step)
	assert.JSONEq(t, `{"recipientName":"Bruno"}`, string(d.Data))

	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPut, "/api/drafts/5", `{"step":1}`).Code)
	assert.JSONEq(t, `{}`, string(repo.drafts[5].Data))

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPut, "/api/drafts/4", `{"step":99}`).Code)
	assert.Equal(t, http.StatusNoContent, do(t, mux, http.MethodDelete, "/api/drafts/4", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/drafts/4", "").Code)
}

type stubPromoRepo struct {
	created []models.PromoCode
	redeem  func(code string, userID int64) (*models.RedeemPromoResponse, error)
}

func (s *stubPromoRepo) List(_ context.Context) ([]models.PromoCode, error) { return s.created, nil }

func (s *stubPromoRepo) Create(_ context.Context, p *models.PromoCode) error {
	p.ID = int64(len(s.created) + 1)
	s.created = append(s.created, *p)
	return nil
}

func (s *stubPromoRepo) Redeem(_ context.Context, code string, userID int64, _ time.Time) (*models.RedeemPromoResponse, error) {
	return s.redeem(code, userID)
}

func TestPromo_RedeemAndCreate(t *testing.T) {
	repo := &stubPromoRepo{redeem: func(code string, userID int64) (*models.RedeemPromoResponse, error) {
		switch code {
		case "WELCOME":
			return &models.RedeemPromoResponse{Code: code, PointsAwarded: 50, Balance: 80}, nil
		case "USED":
			return nil, repository.ErrPromoAlreadyRedeemed
		}
		return nil, repository.ErrPromoInvalid
	}}
	c := NewPromoController(repo)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/promo-codes/redeem", c.Redeem)
	mux.HandleFunc("POST /admin/promo-codes", c.Create)
	mux.HandleFunc("GET /admin/promo-codes", c.List)

	rec := do(t, mux, http.MethodPost, "/api/promo-codes/redeem", `{"code":"WELCOME","userId":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"balance":80`)
	assert.Equal(t, http.StatusConflict, do(t, mux, http.MethodPost, "/api/promo-codes/redeem", `{"code":"USED","userId":3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/promo-codes/redeem", `{"code":"NOPE","userId":3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/promo-codes/redeem", `{"code":"WELCOME"}`).Code)

	assert.Equal(t, http.StatusCreated, do(t, mux, http.MethodPost, "/admin/promo-codes", `{"code":"spring","points":25}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/admin/promo-codes", `{"code":"bad code","points":25}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/admin/promo-codes", `{"code":"zero","points":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/admin/promo-codes", `{"code":"old","points":5,"expiresAt":"2001-01-01T00:00:00Z"}`).Code)

	rec = do(t, mux, http.MethodGet, "/admin/promo-codes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var codes []models.PromoCode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &codes))
	require.Len(t, codes, 1)
	assert.True(t, codes[0].IsActive)
}
