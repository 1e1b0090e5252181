package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/inboxstream/backend/internal/db"
	"github.com/inboxstream/backend/internal/models"
	"github.com/inboxstream/backend/internal/service"
)

// EmailsHandler handles email ingestion, listing and detail requests.
type EmailsHandler struct {
	service *service.EmailService
}

// NewEmailsHandler creates a new EmailsHandler instance.
func NewEmailsHandler(emailService *service.EmailService) *EmailsHandler {
	return &EmailsHandler{
		service: emailService,
	}
}

// Ingest handles POST /api/v1/emails: validates the payload, notifies live
// subscribers, persists the record and returns it.
func (h *EmailsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload models.IngestEmail
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	// Validation happens before any side effect - an invalid payload must
	// reach neither the broadcast nor the store.
	if msg, ok := validateIngestPayload(payload); !ok {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	email, err := h.service.Ingest(ctx, payload)
	if err != nil {
		if errors.Is(err, db.ErrEmailExists) {
			http.Error(w, "An email with this id already exists", http.StatusConflict)
			return
		}
		log.Printf("EmailsHandler: Failed to ingest email %s: %v", payload.ID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(email); err != nil {
		log.Printf("EmailsHandler: Failed to write ingest response: %v", err)
	}
}

// List handles GET /api/v1/emails: returns one filtered, ordered page of
// emails plus the total number of matches ignoring pagination.
func (h *EmailsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := ParseEmailFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	emails, total, err := h.service.List(ctx, filter)
	if err != nil {
		log.Printf("EmailsHandler: Failed to list emails: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if emails == nil {
		emails = []*models.Email{}
	}

	response := &models.EmailsResponse{
		Items: emails,
		Total: total,
	}

	WriteJSONResponse(w, response)
}

// Detail handles GET /api/v1/emails/{id}: returns the email or 404.
func (h *EmailsHandler) Detail(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	email, err := h.service.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrEmailNotFound) {
			http.Error(w, "Email not found", http.StatusNotFound)
			return
		}
		log.Printf("EmailsHandler: Failed to get email %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	WriteJSONResponse(w, email)
}

// validateIngestPayload checks the required ingestion fields. It returns a
// client-facing message and false when the payload is incomplete.
func validateIngestPayload(payload models.IngestEmail) (string, bool) {
	if payload.ID == "" {
		return "id is required", false
	}
	if payload.Subject == "" {
		return "subject is required", false
	}
	if payload.Date == nil {
		return "date is required", false
	}
	return "", true
}
