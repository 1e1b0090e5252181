package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/inboxstream/backend/internal/api"
	"github.com/inboxstream/backend/internal/config"
	"github.com/inboxstream/backend/internal/db"
	"github.com/inboxstream/backend/internal/service"
	smtpgw "github.com/inboxstream/backend/internal/smtp"
	ws "github.com/inboxstream/backend/internal/websocket"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewConnection(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseConnection(pool)

	log.Printf("Successfully connected to database")

	hub := ws.NewHub(cfg.MaxWSConnections)
	emailService := service.NewEmailService(db.NewStore(pool), hub)
	server := NewServer(emailService, hub)

	if cfg.SMTPEnabled() {
		gateway := smtpgw.NewGateway(cfg.SMTPAddr, cfg.SMTPDomain, emailService)
		go func() {
			log.Printf("SMTP ingestion gateway listening on %s", cfg.SMTPAddr)
			if err := gateway.ListenAndServe(); err != nil {
				log.Fatalf("SMTP gateway failed: %v", err)
			}
		}()
	}

	address := ":" + cfg.Port
	log.Printf("InboxStream API server starting on %s (environment: %s)", address, cfg.Environment)

	if err := http.ListenAndServe(address, server); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// NewServer creates and returns a new HTTP handler for the InboxStream API server.
func NewServer(emailService *service.EmailService, hub *ws.Hub) http.Handler {
	emailsHandler := api.NewEmailsHandler(emailService)
	wsHandler := api.NewWebSocketHandler(hub)

	mux := http.NewServeMux()

	mux.HandleFunc("/", handleRoot)

	mux.Handle("/api/v1/emails", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			emailsHandler.List(w, r)
		case http.MethodPost:
			emailsHandler.Ingest(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// Handle /api/v1/emails/{id} pattern
	mux.Handle("/api/v1/emails/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/emails/")
		if id == "" || strings.Contains(id, "/") {
			http.Error(w, "email id is required", http.StatusBadRequest)
			return
		}
		emailsHandler.Detail(w, r, id)
	}))

	mux.Handle("/api/v1/ws", http.HandlerFunc(wsHandler.Handle))

	return mux
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "InboxStream API is running")
}
