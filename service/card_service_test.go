package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echo-vintage-ecard/models"
	"echo-vintage-ecard/repository"
)

var fixedNow = time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)

type cardFixture struct {
	svc       *CardService
	users     *fakeUserRepo
	cards     *fakeCardRepo
	email     *fakeEmailSender
	messenger *fakeMessageSender
}

func newCardFixture(cost int) *cardFixture {
	users := &fakeUserRepo{users: map[int64]*models.User{
		1: {ID: 1, DisplayName: "Ana", Points: 100, SubscriptionTier: models.TierFree},
	}}
	cards := newFakeCardRepo(users)
	email := &fakeEmailSender{result: models.SendResult{Success: true, MessageID: "em_1", Attempts: 1}}
	messenger := &fakeMessageSender{result: models.SendResult{Success: true, MessageID: "m_1", Attempts: 1}}

	svc := NewCardService(cards, users, fakeQuoter{total: cost}, email, messenger, "https://echo.example.com/")
	svc.now = func() time.Time { return fixedNow }
	return &cardFixture{svc: svc, users: users, cards: cards, email: email, messenger: messenger}
}

func emailRequest() models.CreateCardRequest {
	return models.CreateCardRequest{
		SenderID:       1,
		RecipientName:  "Bruno",
		RecipientEmail: "bruno@example.com",
		Content:        "<p>Happy Valentine's</p>",
		DeliveryMethod: models.DeliveryEmail,
	}
}

func TestCreateCard_ChargesAndDeliversEmail(t *testing.T) {
	f := newCardFixture(30)

	resp, err := f.svc.CreateCard(context.Background(), emailRequest())
	require.NoError(t, err)

	assert.Equal(t, 70, f.users.users[1].Points)
	assert.Equal(t, 30, resp.Card.TymSpent)
	assert.Equal(t, "https://echo.example.com/card/"+resp.Card.Slug, resp.ShareURL)
	require.NotNil(t, resp.Delivery)
	assert.True(t, resp.Delivery.Success)

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, []string{"bruno@example.com"}, f.email.sent[0].To)
	assert.Contains(t, f.email.sent[0].HTML, resp.ShareURL)
	assert.Contains(t, f.email.sent[0].Subject, "Ana")

	stored := f.cards.cards[resp.Card.Slug]
	assert.Equal(t, models.CardSent, stored.Status)
	require.NotNil(t, stored.SentAt)
	assert.Equal(t, fixedNow, *stored.SentAt)
}

func TestCreateCard_InsufficientPoints(t *testing.T) {
	f := newCardFixture(500)

	_, err := f.svc.CreateCard(context.Background(), emailRequest())
	assert.ErrorIs(t, err, repository.ErrInsufficientPoints)
	assert.Equal(t, 100, f.users.users[1].Points)
	assert.Empty(t, f.cards.cards)
	assert.Empty(t, f.email.sent)
}

func TestCreateCard_DeliveryFailureKeepsCard(t *testing.T) {
	f := newCardFixture(10)
	f.email.result = models.SendResult{Success: false, Error: "smtp down", Attempts: 3}

	resp, err := f.svc.CreateCard(context.Background(), emailRequest())
	require.NoError(t, err)

	assert.False(t, resp.Delivery.Success)
	stored := f.cards.cards[resp.Card.Slug]
	assert.Equal(t, models.CardFailed, stored.Status)
	assert.Equal(t, "smtp down", stored.LastError)
	assert.Equal(t, 90, f.users.users[1].Points)
}

func TestCreateCard_Validation(t *testing.T) {
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)

	tests := []struct {
		name   string
		mutate func(r *models.CreateCardRequest)
		field  string
	}{
		{"missing recipient", func(r *models.CreateCardRequest) { r.RecipientName = "  " }, "recipientName"},
		{"bad email", func(r *models.CreateCardRequest) { r.RecipientEmail = "nope" }, "recipientEmail"},
		{"messenger without psid", func(r *models.CreateCardRequest) { r.DeliveryMethod = models.DeliveryMessenger }, "recipientPsid"},
		{"unknown method", func(r *models.CreateCardRequest) { r.DeliveryMethod = "pigeon" }, "deliveryMethod"},
		{"schedule in the past", func(r *models.CreateCardRequest) { r.ScheduledAt = &past }, "scheduledAt"},
		{"expiry before now", func(r *models.CreateCardRequest) { r.ExpiresAt = &past }, "expiresAt"},
		{"expiry before schedule", func(r *models.CreateCardRequest) {
			later := future.Add(time.Hour)
			r.ScheduledAt = &later
			r.ExpiresAt = &future
		}, "expiresAt"},
		{"short password", func(r *models.CreateCardRequest) { r.Password = "abc" }, "password"},
		{"short password after trimming", func(r *models.CreateCardRequest) { r.Password = "  abc  " }, "password"},
		{"password over 72 bytes", func(r *models.CreateCardRequest) { r.Password = strings.Repeat("a", 73) }, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCardFixture(0)
			req := emailRequest()
			tt.mutate(&req)

			_, err := f.svc.CreateCard(context.Background(), req)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCreateCard_ScheduledIsNotDeliveredUntilDue(t *testing.T) {
	f := newCardFixture(0)
	at := fixedNow.Add(30 * time.Minute)
	req := emailRequest()
	req.ScheduledAt = &at

	resp, err := f.svc.CreateCard(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.Delivery)
	assert.Equal(t, models.CardScheduled, resp.Card.Status)
	assert.Empty(t, f.email.sent)

	_, err = f.svc.OpenCard(context.Background(), resp.Card.Slug, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := f.svc.DeliverDue(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	f.svc.now = func() time.Time { return at.Add(time.Second) }
	n, err = f.svc.DeliverDue(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.email.sent, 1)
	assert.Equal(t, models.CardSent, f.cards.cards[resp.Card.Slug].Status)
}

func TestCreateCard_LinkAndMessenger(t *testing.T) {
	f := newCardFixture(0)

	req := emailRequest()
	req.DeliveryMethod = ""
	resp, err := f.svc.CreateCard(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryLink, resp.Card.DeliveryMethod)
	assert.Equal(t, models.CardSent, f.cards.cards[resp.Card.Slug].Status)
	assert.Empty(t, f.email.sent)

	req = emailRequest()
	req.DeliveryMethod = models.DeliveryMessenger
	req.RecipientPSID = "psid-42"
	resp, err = f.svc.CreateCard(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, f.messenger.psids, 1)
	assert.Equal(t, "psid-42", f.messenger.psids[0])
	assert.Contains(t, f.messenger.texts[0], resp.ShareURL)
}

func TestOpenCard_PasswordAndExpiry(t *testing.T) {
	f := newCardFixture(0)
	expires := fixedNow.Add(24 * time.Hour)
	req := emailRequest()
	req.Password = "s3cret"
	req.ExpiresAt = &expires

	resp, err := f.svc.CreateCard(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Card.HasPassword)
	assert.NotEqual(t, "s3cret", f.cards.cards[resp.Card.Slug].PasswordHash)

	_, err = f.svc.OpenCard(context.Background(), resp.Card.Slug, "")
	assert.ErrorIs(t, err, ErrCardLocked)
	_, err = f.svc.OpenCard(context.Background(), resp.Card.Slug, "wrong")
	assert.ErrorIs(t, err, ErrCardLocked)

	card, err := f.svc.OpenCard(context.Background(), resp.Card.Slug, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, 1, card.ViewCount)
	card, err = f.svc.OpenCard(context.Background(), resp.Card.Slug, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, 2, card.ViewCount)

	f.svc.now = func() time.Time { return expires }
	_, err = f.svc.OpenCard(context.Background(), resp.Card.Slug, "s3cret")
	assert.ErrorIs(t, err, ErrCardExpired)
}

func TestOpenCard_PasswordIsTrimmed(t *testing.T) {
	f := newCardFixture(0)
	req := emailRequest()
	req.Password = "  s3cret "

	resp, err := f.svc.CreateCard(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.OpenCard(context.Background(), resp.Card.Slug, "s3cret")
	assert.NoError(t, err)
}

func TestDeliverDue_CanceledRunReleasesUnsentCards(t *testing.T) {
	f := newCardFixture(0)
	at := fixedNow.Add(10 * time.Minute)
	for i := 0; i < 3; i++ {
		req := emailRequest()
		req.ScheduledAt = &at
		_, err := f.svc.CreateCard(context.Background(), req)
		require.NoError(t, err)
	}
	f.svc.now = func() time.Time { return at }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.email.result = models.SendResult{Success: false, Error: "context canceled", Attempts: 1}
	f.email.onSend = cancel

	n, err := f.svc.DeliverDue(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]int{models.CardFailed: 1, models.CardScheduled: 2}, f.cards.statuses())

	f.email.onSend = nil
	f.email.result = models.SendResult{Success: true, MessageID: "em_2", Attempts: 1}
	n, err = f.svc.DeliverDue(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, map[string]int{models.CardFailed: 1, models.CardSent: 2}, f.cards.statuses())
}

func TestResend_OnlyFailedCards(t *testing.T) {
	f := newCardFixture(0)
	f.email.result = models.SendResult{Success: false, Error: "bounced", Attempts: 3}

	resp, err := f.svc.CreateCard(context.Background(), emailRequest())
	require.NoError(t, err)

	f.email.result = models.SendResult{Success: true, Attempts: 1}
	card, result, err := f.svc.Resend(context.Background(), resp.Card.Slug)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.CardSent, card.Status)
	assert.Empty(t, card.LastError)

	_, _, err = f.svc.Resend(context.Background(), resp.Card.Slug)
	assert.ErrorIs(t, err, ErrNotResendable)
}

func TestQuote_UnknownUser(t *testing.T) {
	f := newCardFixture(10)

	q, err := f.svc.Quote(context.Background(), 1, models.CardSelection{})
	require.NoError(t, err)
	assert.Equal(t, 10, q.Total)

	_, err = f.svc.Quote(context.Background(), 2, models.CardSelection{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
