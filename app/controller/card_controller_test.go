package controller

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/service"
)

func cardMux(c *CardController) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cards", c.Create)
	mux.HandleFunc("POST /api/cards/quote", c.Quote)
	mux.HandleFunc("GET /api/cards/{slug}", c.Open)
	mux.HandleFunc("GET /api/cards/{slug}/qr", c.QRCode)
	mux.HandleFunc("GET /api/cards/{slug}/render", c.Render)
	mux.HandleFunc("GET /api/cards/{slug}/preview.png", c.PreviewPNG)
	mux.HandleFunc("GET /api/cards/{slug}/preview.pdf", c.PreviewPDF)
	mux.HandleFunc("POST /api/cards/{slug}/resend", c.Resend)
	mux.HandleFunc("GET /api/users/{userId}/cards", c.ListSent)
	return mux
}

func TestCard_CreateMapsErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &service.ValidationError{Field: "recipientName", Msg: "is required"}, http.StatusBadRequest},
		{"insufficient points", repository.ErrInsufficientPoints, http.StatusPaymentRequired},
		{"unknown sender", repository.ErrNotFound, http.StatusNotFound},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := &fakeCardManager{create: func(models.CreateCardRequest) (*models.CreateCardResponse, error) {
				return nil, tt.err
			}}
			rec := do(t, cardMux(NewCardController(cards, fakeRenderer{})), http.MethodPost, "/api/cards", `{"senderId":1}`)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
			}
		})
	}
}

func TestCard_CreatePassesRequest(t *testing.T) {
	var got models.CreateCardRequest
	cards := &fakeCardManager{create: func(req models.CreateCardRequest) (*models.CreateCardResponse, error) {
		got = req
		return &models.CreateCardResponse{Card: &models.Card{Slug: "s1"}, ShareURL: "https://echo.example.com/card/s1"}, nil
	}}
	body := `{"senderId":7,"recipientName":"Bruno","deliveryMethod":"link","selection":{"envelopeId":2,"stickerIds":[4,9]},"password":"cake"}`

	rec := do(t, cardMux(NewCardController(cards, fakeRenderer{})), http.MethodPost, "/api/cards", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), got.SenderID)
	assert.Equal(t, []int64{4, 9}, got.Selection.StickerIDs)
	require.NotNil(t, got.Selection.EnvelopeID)
	assert.Equal(t, int64(2), *got.Selection.EnvelopeID)

	var resp models.CreateCardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://echo.example.com/card/s1", resp.ShareURL)
}

func TestCard_OpenUsesPasswordHeader(t *testing.T) {
	cards := &fakeCardManager{card: &models.Card{Slug: "abc", RecipientName: "Bruno", PasswordHash: "$2a$secret", HasPassword: true}}
	mux := cardMux(NewCardController(cards, fakeRenderer{}))

	req := httptest.NewRequest(http.MethodGet, "/api/cards/abc", nil)
	req.Header.Set(CardPasswordHeader, " cake ")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cake", cards.gotPwd)
	assert.NotContains(t, rec.Body.String(), "$2a$secret")
	assert.Contains(t, rec.Body.String(), `"hasPassword":true`)
}

func TestCard_OpenStatusCodes(t *testing.T) {
	for err, status := range map[error]int{
		service.ErrCardExpired: http.StatusGone,
		service.ErrCardLocked:  http.StatusUnauthorized,
		repository.ErrNotFound: http.StatusNotFound,
	} {
		cards := &fakeCardManager{err: err}
		rec := do(t, cardMux(NewCardController(cards, fakeRenderer{})), http.MethodGet, "/api/cards/abc", "")
		assert.Equal(t, status, rec.Code, err.Error())
	}
}

func TestCard_QRCode(t *testing.T) {
	cards := &fakeCardManager{card: &models.Card{Slug: "abc", QREnabled: true}}
	mux := cardMux(NewCardController(cards, fakeRenderer{}))

	rec := do(t, mux, http.MethodGet, "/api/cards/abc/qr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)

	cards.card.QREnabled = false
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/cards/abc/qr", "").Code)
}

func TestCard_RenderAndPreviews(t *testing.T) {
	cards := &fakeCardManager{card: &models.Card{Slug: "abc", RecipientName: "Bruno"}}
	mux := cardMux(NewCardController(cards, fakeRenderer{}))

	rec := do(t, mux, http.MethodGet, "/api/cards/abc/render", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Bruno")

	rec = do(t, mux, http.MethodGet, "/api/cards/abc/preview.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = do(t, mux, http.MethodGet, "/api/cards/abc/preview.pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "card-abc.pdf")
}

func TestCard_ResendAndList(t *testing.T) {
	cards := &fakeCardManager{card: &models.Card{Slug: "abc", SenderID: 7}}
	mux := cardMux(NewCardController(cards, fakeRenderer{}))

	assert.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/api/cards/abc/resend", "").Code)

	rec := do(t, mux, http.MethodGet, "/api/users/7/cards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	cards.err = service.ErrNotResendable
	assert.Equal(t, http.StatusConflict, do(t, mux, http.MethodPost, "/api/cards/abc/resend", "").Code)
}

func TestCard_QuoteRequiresUser(t *testing.T) {
	mux := cardMux(NewCardController(&fakeCardManager{}, fakeRenderer{}))
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/cards/quote", `{"selection":{}}`).Code)

	rec := do(t, mux, http.MethodPost, "/api/cards/quote", `{"userId":3,"selection":{"stampId":1}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":12`)
}
