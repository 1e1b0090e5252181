package models

import "time"

// DefaultCategory is assigned to ingested emails that carry no category.
const DefaultCategory = "General"

// Email is one persisted email record. The id is supplied by the external
// system that sends us the email, not generated here.
type Email struct {
	ID         string     `json:"id"`
	Subject    string     `json:"subject"`
	Body       *string    `json:"body"`
	Category   string     `json:"category"`
	Date       *time.Time `json:"date"`
	InsertedAt time.Time  `json:"inserted_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// IngestEmail is the inbound ingestion payload, before the record has been
// persisted and given bookkeeping timestamps.
type IngestEmail struct {
	ID       string     `json:"id"`
	Subject  string     `json:"subject"`
	Body     *string    `json:"body"`
	Category string     `json:"category"`
	Date     *time.Time `json:"date"`
}

// Record converts the payload into an Email ready for persistence.
func (p IngestEmail) Record() *Email {
	category := p.Category
	if category == "" {
		category = DefaultCategory
	}
	return &Email{
		ID:       p.ID,
		Subject:  p.Subject,
		Body:     p.Body,
		Category: category,
		Date:     p.Date,
	}
}

// Notification is the fixed payload sent to every live subscriber when an
// email is ingested. Date is serialized as an ISO-8601 string; a missing
// body serializes as null.
type Notification struct {
	ID       string  `json:"id"`
	Subject  string  `json:"subject"`
	Body     *string `json:"body"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
}

// NotificationFromIngest builds the broadcast payload from the raw ingested
// email, before persistence.
func NotificationFromIngest(p IngestEmail) Notification {
	category := p.Category
	if category == "" {
		category = DefaultCategory
	}
	var date string
	if p.Date != nil {
		date = p.Date.UTC().Format(time.RFC3339)
	}
	return Notification{
		ID:       p.ID,
		Subject:  p.Subject,
		Body:     p.Body,
		Category: category,
		Date:     date,
	}
}
