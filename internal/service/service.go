package service

import (
	"context"

	"github.com/inboxstream/backend/internal/models"
)

// EmailStore is the persistence surface the service needs.
type EmailStore interface {
	CreateEmail(ctx context.Context, email *models.Email) (*models.Email, error)
	GetEmailByID(ctx context.Context, id string) (*models.Email, error)
	ListEmails(ctx context.Context, filter models.EmailFilter) ([]*models.Email, int, error)
}

// Broadcaster delivers a notification to every live subscriber,
// best-effort. It never reports delivery failures.
type Broadcaster interface {
	Broadcast(n models.Notification)
}

// EmailService sequences notification and persistence for ingested emails
// and fronts the query path.
type EmailService struct {
	store       EmailStore
	broadcaster Broadcaster
}

// NewEmailService creates a new EmailService instance.
func NewEmailService(store EmailStore, broadcaster Broadcaster) *EmailService {
	return &EmailService{
		store:       store,
		broadcaster: broadcaster,
	}
}

// Ingest notifies all live subscribers with the raw payload and then
// persists it, returning the stored record.
//
// Subscribers are deliberately notified before durability is confirmed: a
// crash between broadcast and persist yields a notified-but-not-stored
// email. This ordering is an accepted trade-off, not a bug. No retraction
// is sent when the persist fails after the broadcast.
func (s *EmailService) Ingest(ctx context.Context, payload models.IngestEmail) (*models.Email, error) {
	s.broadcaster.Broadcast(models.NotificationFromIngest(payload))

	return s.store.CreateEmail(ctx, payload.Record())
}

// List returns one page of emails matching the filter plus the total match
// count ignoring pagination.
func (s *EmailService) List(ctx context.Context, filter models.EmailFilter) ([]*models.Email, int, error) {
	return s.store.ListEmails(ctx, filter)
}

// Detail returns the email with the given id. A missing id surfaces the
// store's not-found error unchanged; no default record is synthesized.
func (s *EmailService) Detail(ctx context.Context, id string) (*models.Email, error) {
	return s.store.GetEmailByID(ctx, id)
}
