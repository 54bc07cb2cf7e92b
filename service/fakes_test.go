package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

type fakeStickerRepo struct {
	mu       sync.Mutex
	stickers map[int64]*models.Sticker
	nextID   int64
	err      error
}

func newFakeStickerRepo() *fakeStickerRepo {
	return &fakeStickerRepo{stickers: map[int64]*models.Sticker{}}
}

func (f *fakeStickerRepo) List(_ context.Context, _ string, _ bool) ([]models.Sticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Sticker{}
	for _, s := range f.stickers {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStickerRepo) GetByID(_ context.Context, id int64) (*models.Sticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stickers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (f *fakeStickerRepo) Create(_ context.Context, s *models.Sticker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	s.ID = f.nextID
	c := *s
	f.stickers[s.ID] = &c
	return nil
}

func (f *fakeStickerRepo) Update(_ context.Context, s *models.Sticker) error { return nil }
func (f *fakeStickerRepo) Delete(_ context.Context, id int64) error      { return nil }

type fakeImageHost struct {
	calls    int
	failCall int
	uploads  []string
}

func (h *fakeImageHost) Upload(_ context.Context, name, _ string, _ []byte) (string, error) {
	h.calls++
	if h.calls == h.failCall {
		return "", errors.New("host unavailable")
	}
	h.uploads = append(h.uploads, name)
	return "https://img.example.com/" + name, nil
}

type fakeUserRepo struct {
	users map[int64]*models.User
}

func (f *fakeUserRepo) List(_ context.Context, _ string, _, _ int) ([]models.User, int, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) UpdateSubscription(_ context.Context, _ int64, _ string, _ *time.Time) (*models.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) UpdateRole(_ context.Context, _ int64, _ string) error { return nil }
func (f *fakeUserRepo) AdjustPoints(_ context.Context, _ int64, _ int) (int, error) {
	return 0, nil
}
func (f *fakeUserRepo) Delete(_ context.Context, _ int64) error { return nil }

// fakeCardRepo keeps cards in memory and charges the fake user repo
type fakeCardRepo struct {
	users  *fakeUserRepo
	cards  map[string]*models.Card
	nextID int64
}

func newFakeCardRepo(users *fakeUserRepo) *fakeCardRepo {
	return &fakeCardRepo{users: users, cards: map[string]*models.Card{}}
}

func (f *fakeCardRepo) CreateWithCharge(_ context.Context, card *models.Card, cost int) error {
	u, ok := f.users.users[card.SenderID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Points < cost {
		return repository.ErrInsufficientPoints
	}
	u.Points -= cost
	f.nextID++
	card.ID = f.nextID
	card.TymSpent = cost
	card.HasPassword = card.PasswordHash != ""
	c := *card
	f.cards[card.Slug] = &c
	return nil
}

func (f *fakeCardRepo) GetBySlug(_ context.Context, slug string) (*models.Card, error) {
	c, ok := f.cards[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCardRepo) byID(id int64) *models.Card {
	for _, c := range f.cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (f *fakeCardRepo) statuses() map[string]int {
	out := map[string]int{}
	for _, c := range f.cards {
		out[c.Status]++
	}
	return out
}

func (f *fakeCardRepo) IncrementViews(_ context.Context, id int64) (int, error) {
	c := f.byID(id)
	if c == nil {
		return 0, repository.ErrNotFound
	}
	c.ViewCount++
	return c.ViewCount, nil
}

func (f *fakeCardRepo) ListBySender(_ context.Context, senderID int64, _ int) ([]models.Card, error) {
	out := []models.Card{}
	for _, c := range f.cards {
		if c.SenderID == senderID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]models.Card, error) {
	out := []models.Card{}
	for _, c := range f.cards {
		if len(out) == limit {
			break
		}
		if c.Status == models.CardScheduled && c.ScheduledAt != nil && !c.ScheduledAt.After(now) {
			c.Status = models.CardPending
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) UpdateStatus(_ context.Context, id int64, status, lastError string, sentAt *time.Time) error {
	c := f.byID(id)
	if c == nil {
		return repository.ErrNotFound
	}
	c.Status = status
	c.LastError = lastError
	if sentAt != nil {
		c.SentAt = sentAt
	}
	return nil
}

type fakeQuoter struct {
	total int
	err   error
}

func (q fakeQuoter) Quote(_ context.Context, _ models.CardSelection, _ *models.User) (*models.PriceQuote, error) {
	if q.err != nil {
		return nil, q.err
	}
	return &models.PriceQuote{Lines: []models.PriceLine{}, Subtotal: q.total, Tier: models.TierFree, Total: q.total}, nil
}

type fakeEmailSender struct {
	sent   []models.EmailMessage
	result models.SendResult
	onSend func()
}

func (f *fakeEmailSender) Send(_ context.Context, msg models.EmailMessage) models.SendResult {
	f.sent = append(f.sent, msg)
	if f.onSend != nil {
		f.onSend()
	}
	return f.result
}

type fakeMessageSender struct {
	psids  []string
	texts  []string
	result models.SendResult
}

func (f *fakeMessageSender) Send(_ context.Context, psid, text string) models.SendResult {
	f.psids = append(f.psids, psid)
	f.texts = append(f.texts, text)
	return f.result
}
