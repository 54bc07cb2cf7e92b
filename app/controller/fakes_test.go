package controller

import (
	"context"
	"sort"
	"sync"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/slots"
)

type memEnvelopeRepo struct {
	mu     sync.Mutex
	rows   map[int64]models.Envelope
	nextID int64
}

func newMemEnvelopeRepo() *memEnvelopeRepo {
	return &memEnvelopeRepo{rows: map[int64]models.Envelope{}}
}

func (m *memEnvelopeRepo) List(_ context.Context, activeOnly bool) ([]models.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Envelope{}
	for _, e := range m.rows {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memEnvelopeRepo) GetByID(_ context.Context, id int64) (*models.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *memEnvelopeRepo) nameTaken(name string, except int64) bool {
	for id, e := range m.rows {
		if id != except && e.Name == name {
			return true
		}
	}
	return false
}

func (m *memEnvelopeRepo) Create(_ context.Context, e *models.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(e.Name, 0) {
		return repository.ErrConflict
	}
	m.nextID++
	e.ID = m.nextID
	m.rows[e.ID] = *e
	return nil
}

func (m *memEnvelopeRepo) Update(_ context.Context, e *models.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[e.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.nameTaken(e.Name, e.ID) {
		return repository.ErrConflict
	}
	m.rows[e.ID] = *e
	return nil
}

func (m *memEnvelopeRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// memFrameRepo refuses to delete frames listed in inUse
type memFrameRepo struct {
	rows   map[int64]models.PhotoFrame
	inUse  map[int64]bool
	nextID int64
}

func newMemFrameRepo() *memFrameRepo {
	return &memFrameRepo{rows: map[int64]models.PhotoFrame{}, inUse: map[int64]bool{}}
}

func (m *memFrameRepo) List(_ context.Context, _ bool) ([]models.PhotoFrame, error) {
	out := []models.PhotoFrame{}
	for _, f := range m.rows {
		out = append(out, f)
	}
	return out, nil
}

func (m *memFrameRepo) GetByID(_ context.Context, id int64) (*models.PhotoFrame, error) {
	f, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (m *memFrameRepo) Create(_ context.Context, f *models.PhotoFrame) error {
	m.nextID++
	f.ID = m.nextID
	m.rows[f.ID] = *f
	return nil
}

func (m *memFrameRepo) Update(_ context.Context, f *models.PhotoFrame) error {
	if _, ok := m.rows[f.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[f.ID] = *f
	return nil
}

func (m *memFrameRepo) UpdateSlots(_ context.Context, id int64, list []slots.Slot) error {
	f, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.Slots = list
	m.rows[id] = f
	return nil
}

func (m *memFrameRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	if m.inUse[id] {
		return repository.ErrInUse
	}
	delete(m.rows, id)
	return nil
}

type fakeCardManager struct {
	card   *models.Card
	err    error
	create func(models.CreateCardRequest) (*models.CreateCardResponse, error)
	gotPwd string
}

func (f *fakeCardManager) CreateCard(_ context.Context, req models.CreateCardRequest) (*models.CreateCardResponse, error) {
	return f.create(req)
}

func (f *fakeCardManager) Quote(_ context.Context, _ int64, _ models.CardSelection) (*models.PriceQuote, error) {
	return &models.PriceQuote{Total: 12}, f.err
}

func (f *fakeCardManager) OpenCard(_ context.Context, _ string, password string) (*models.Card, error) {
	f.gotPwd = password
	return f.card, f.err
}

func (f *fakeCardManager) GetForRender(_ context.Context, _ string, password string) (*models.Card, error) {
	f.gotPwd = password
	return f.card, f.err
}

func (f *fakeCardManager) ListSent(_ context.Context, _ int64) ([]models.Card, error) {
	if f.card == nil {
		return []models.Card{}, f.err
	}
	return []models.Card{*f.card}, f.err
}

func (f *fakeCardManager) Resend(_ context.Context, _ string) (*models.Card, models.SendResult, error) {
	return f.card, models.SendResult{Success: f.err == nil}, f.err
}

func (f *fakeCardManager) ShareURL(slug string) string {
	return "https://echo.example.com/card/" + slug
}

type fakeRenderer struct{}

func (fakeRenderer) RenderHTML(_ context.Context, card *models.Card) (string, error) {
	return "<html><body>" + card.RecipientName + "</body></html>", nil
}

func (fakeRenderer) RenderPNG(_ context.Context, _ *models.Card) ([]byte, error) {
	return []byte("\x89PNG fake"), nil
}

func (fakeRenderer) RenderPDF(_ context.Context, _ *models.Card) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}
