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

type memUserRepo struct {
	users      map[int64]*models.User
	gotSearch  string
	gotLimit   int
	gotOffset  int
	gotTier    string
	gotExpires *time.Time
}

func (m *memUserRepo) List(_ context.Context, search string, limit, offset int) ([]models.User, int, error) {
	m.gotSearch, m.gotLimit, m.gotOffset = search, limit, offset
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUserRepo) UpdateSubscription(_ context.Context, id int64, tier string, expiresAt *time.Time) (*models.User, error) {
	m.gotTier, m.gotExpires = tier, expiresAt
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.SubscriptionTier, u.SubscriptionExpiresAt = tier, expiresAt
	c := *u
	return &c, nil
}

func (m *memUserRepo) UpdateRole(_ context.Context, id int64, role string) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (m *memUserRepo) AdjustPoints(_ context.Context, id int64, delta int) (int, error) {
	u, ok := m.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if u.Points+delta < 0 {
		return 0, repository.ErrInsufficientPoints
	}
	u.Points += delta
	return u.Points, nil
}

func (m *memUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func userMux(c *UserController) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/users", c.List)
	mux.HandleFunc("GET /admin/users/{id}", c.Get)
	mux.HandleFunc("PUT /admin/users/{id}/subscription", c.UpdateSubscription)
	mux.HandleFunc("PUT /admin/users/{id}/role", c.UpdateRole)
	mux.HandleFunc("POST /admin/users/{id}/points", c.AdjustPoints)
	mux.HandleFunc("DELETE /admin/users/{id}", c.Delete)
	return mux
}

func newMemUsers() *memUserRepo {
	return &memUserRepo{users: map[int64]*models.User{
		1: {ID: 1, Email: "ana@example.com", Role: models.RoleUser, Points: 30, SubscriptionTier: models.TierFree},
	}}
}

func TestUser_ListClampsPaging(t *testing.T) {
	repo := newMemUsers()
	mux := userMux(NewUserController(repo))

	rec := do(t, mux, http.MethodGet, "/admin/users?search=%20ana%20&limit=5000&offset=-4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana", repo.gotSearch)
	assert.Equal(t, defaultUserPageSize, repo.gotLimit)
	assert.Equal(t, 0, repo.gotOffset)

	var resp models.UserListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/admin/users?limit=ten", "").Code)
}

func TestUser_AdjustPointsNeverNegative(t *testing.T) {
	repo := newMemUsers()
	mux := userMux(NewUserController(repo))

	rec := do(t, mux, http.MethodPost, "/admin/users/1/points", `{"delta":20,"reason":"contest"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points":50`)

	assert.Equal(t, http.StatusPaymentRequired, do(t, mux, http.MethodPost, "/admin/users/1/points", `{"delta":-51}`).Code)
	assert.Equal(t, 50, repo.users[1].Points)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/admin/users/1/points", `{"delta":0}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodPost, "/admin/users/9/points", `{"delta":1}`).Code)
}

func TestUser_SubscriptionAndRole(t *testing.T) {
	repo := newMemUsers()
	mux := userMux(NewUserController(repo))

	rec := do(t, mux, http.MethodPut, "/admin/users/1/subscription", `{"tier":"Premium","expiresAt":"2027-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.TierPremium, repo.gotTier)
	require.NotNil(t, repo.gotExpires)

	rec = do(t, mux, http.MethodPut, "/admin/users/1/subscription", `{"tier":"free","expiresAt":"2027-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, repo.gotExpires)

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPut, "/admin/users/1/subscription", `{"tier":"gold"}`).Code)

	rec = do(t, mux, http.MethodPut, "/admin/users/1/role", `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleAdmin, repo.users[1].Role)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPut, "/admin/users/1/role", `{"role":"root"}`).Code)

	assert.Equal(t, http.StatusNoContent, do(t, mux, http.MethodDelete, "/admin/users/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/admin/users/1", "").Code)
}
