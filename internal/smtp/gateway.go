package smtp

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/jhillyerd/enmime"

	"github.com/inboxstream/backend/internal/models"
)

// Ingestor is the ingestion surface the gateway feeds parsed messages into.
// SMTP-sourced emails follow the exact same path as HTTP-sourced ones:
// broadcast first, then persist.
type Ingestor interface {
	Ingest(ctx context.Context, payload models.IngestEmail) (*models.Email, error)
}

// Gateway is an SMTP server that accepts inbound mail and ingests each
// delivered message as an email record.
type Gateway struct {
	server *smtp.Server
}

// NewGateway creates a Gateway listening on addr, announcing domain.
func NewGateway(addr, domain string, ingestor Ingestor) *Gateway {
	server := smtp.NewServer(&backend{ingestor: ingestor})
	server.Addr = addr
	server.Domain = domain
	server.ReadTimeout = 30 * time.Second
	server.WriteTimeout = 30 * time.Second
	server.MaxMessageBytes = 10 * 1024 * 1024
	server.MaxRecipients = 50

	return &Gateway{server: server}
}

// ListenAndServe runs the SMTP server until Close is called.
func (g *Gateway) ListenAndServe() error {
	return g.server.ListenAndServe()
}

// Close shuts the SMTP listener down.
func (g *Gateway) Close() error {
	return g.server.Close()
}

type backend struct {
	ingestor Ingestor
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{ingestor: b.ingestor}, nil
}

// session handles one SMTP transaction. Sender and recipients are accepted
// unconditionally; only the message content matters for ingestion.
type session struct {
	ingestor Ingestor
}

func (s *session) Mail(_ string, _ *smtp.MailOptions) error {
	return nil
}

func (s *session) Rcpt(_ string, _ *smtp.RcptOptions) error {
	return nil
}

func (s *session) Data(r io.Reader) error {
	payload, err := parseMessage(r)
	if err != nil {
		log.Printf("smtp: failed to parse incoming message: %v", err)
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Malformed message",
		}
	}

	if _, err := s.ingestor.Ingest(context.Background(), payload); err != nil {
		log.Printf("smtp: failed to ingest message %s: %v", payload.ID, err)
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary ingestion failure",
		}
	}

	return nil
}

func (s *session) Reset() {}

func (s *session) Logout() error {
	return nil
}

// parseMessage maps a raw MIME message onto the ingestion payload. The
// Message-ID header becomes the record id (a generated UUID when absent),
// the Date header the business date, and an X-Category header may override
// the default category.
func parseMessage(r io.Reader) (models.IngestEmail, error) {
	envelope, err := enmime.ReadEnvelope(r)
	if err != nil {
		return models.IngestEmail{}, fmt.Errorf("failed to read envelope: %w", err)
	}

	subject := strings.TrimSpace(envelope.GetHeader("Subject"))
	if subject == "" {
		return models.IngestEmail{}, fmt.Errorf("message has no subject")
	}

	id := strings.Trim(strings.TrimSpace(envelope.GetHeader("Message-Id")), "<>")
	if id == "" {
		id = uuid.NewString()
	}

	payload := models.IngestEmail{
		ID:       id,
		Subject:  subject,
		Category: strings.TrimSpace(envelope.GetHeader("X-Category")),
	}

	if text := strings.TrimSpace(envelope.Text); text != "" {
		payload.Body = &text
	}

	if rawDate := envelope.GetHeader("Date"); rawDate != "" {
		if date, err := mail.ParseDate(rawDate); err == nil {
			payload.Date = &date
		}
	}
	if payload.Date == nil {
		now := time.Now().UTC()
		payload.Date = &now
	}

	return payload, nil
}
