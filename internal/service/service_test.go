package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inboxstream/backend/internal/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateEmail(ctx context.Context, email *models.Email) (*models.Email, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

func (m *mockStore) GetEmailByID(ctx context.Context, id string) (*models.Email, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

func (m *mockStore) ListEmails(ctx context.Context, filter models.EmailFilter) ([]*models.Email, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Email), args.Int(1), args.Error(2)
}

// recordingBroadcaster records broadcasts and the order they happened in
// relative to store calls.
type recordingBroadcaster struct {
	notifications []models.Notification
	onBroadcast   func()
}

func (b *recordingBroadcaster) Broadcast(n models.Notification) {
	b.notifications = append(b.notifications, n)
	if b.onBroadcast != nil {
		b.onBroadcast()
	}
}

func TestIngestBroadcastsBeforePersisting(t *testing.T) {
	date := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	payload := models.IngestEmail{ID: "42", Subject: "Invoice", Category: "Finance", Date: &date}
	stored := &models.Email{ID: "42", Subject: "Invoice", Category: "Finance", Date: &date, InsertedAt: time.Now()}

	var sequence []string

	store := &mockStore{}
	store.On("CreateEmail", mock.Anything, mock.MatchedBy(func(e *models.Email) bool {
		return e.ID == "42" && e.Subject == "Invoice" && e.Category == "Finance"
	})).Run(func(mock.Arguments) {
		sequence = append(sequence, "persist")
	}).Return(stored, nil)

	broadcaster := &recordingBroadcaster{onBroadcast: func() {
		sequence = append(sequence, "broadcast")
	}}

	svc := NewEmailService(store, broadcaster)
	email, err := svc.Ingest(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, stored, email)
	assert.Equal(t, []string{"broadcast", "persist"}, sequence, "subscribers must be notified before the durable write")

	require.Len(t, broadcaster.notifications, 1)
	n := broadcaster.notifications[0]
	assert.Equal(t, "42", n.ID)
	assert.Equal(t, "Invoice", n.Subject)
	assert.Nil(t, n.Body)
	assert.Equal(t, "Finance", n.Category)
	assert.Equal(t, "2025-10-15T10:00:00Z", n.Date)

	store.AssertExpectations(t)
}

func TestIngestStillBroadcastsWhenPersistFails(t *testing.T) {
	date := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	payload := models.IngestEmail{ID: "42", Subject: "Invoice", Date: &date}
	storeErr := errors.New("store unavailable")

	store := &mockStore{}
	store.On("CreateEmail", mock.Anything, mock.Anything).Return(nil, storeErr)

	broadcaster := &recordingBroadcaster{}

	svc := NewEmailService(store, broadcaster)
	_, err := svc.Ingest(context.Background(), payload)

	// The notification has already gone out; no retraction is sent.
	assert.ErrorIs(t, err, storeErr)
	assert.Len(t, broadcaster.notifications, 1)
}

func TestIngestDefaultsCategory(t *testing.T) {
	date := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	payload := models.IngestEmail{ID: "7", Subject: "Hello", Date: &date}

	store := &mockStore{}
	store.On("CreateEmail", mock.Anything, mock.MatchedBy(func(e *models.Email) bool {
		return e.Category == models.DefaultCategory
	})).Return(&models.Email{ID: "7", Subject: "Hello", Category: models.DefaultCategory}, nil)

	broadcaster := &recordingBroadcaster{}

	svc := NewEmailService(store, broadcaster)
	_, err := svc.Ingest(context.Background(), payload)
	require.NoError(t, err)

	require.Len(t, broadcaster.notifications, 1)
	assert.Equal(t, models.DefaultCategory, broadcaster.notifications[0].Category)
	store.AssertExpectations(t)
}

func TestListDelegatesToStore(t *testing.T) {
	filter := models.NewEmailFilter()
	filter.Categories = []string{"finance"}
	emails := []*models.Email{{ID: "1"}, {ID: "2"}}

	store := &mockStore{}
	store.On("ListEmails", mock.Anything, filter).Return(emails, 12, nil)

	svc := NewEmailService(store, &recordingBroadcaster{})
	page, total, err := svc.List(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, emails, page)
	assert.Equal(t, 12, total)
	store.AssertExpectations(t)
}

func TestDetailPassesNotFoundThrough(t *testing.T) {
	notFound := errors.New("email not found")

	store := &mockStore{}
	store.On("GetEmailByID", mock.Anything, "missing").Return(nil, notFound)

	svc := NewEmailService(store, &recordingBroadcaster{})
	email, err := svc.Detail(context.Background(), "missing")

	assert.Nil(t, email)
	assert.ErrorIs(t, err, notFound)
}
