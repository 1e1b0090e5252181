package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/inboxstream/backend/internal/models"
)

// WriteJSONResponse encodes v and writes it as a JSON response.
// Encoding happens into a buffer first so an encoding failure cannot leave
// a partial body behind. Returns false if the response could not be written.
func WriteJSONResponse(w http.ResponseWriter, v any) bool {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("API: Failed to encode JSON response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return false
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		log.Printf("API: Failed to write JSON response: %v", err)
		return false
	}

	return true
}

// ParseEmailFilter builds the filter criteria for a list request from its
// query parameters. Category values may be repeated, comma-joined, or both;
// they are normalized into one case-insensitive set. Invalid parameter
// values are a client error.
func ParseEmailFilter(r *http.Request) (models.EmailFilter, error) {
	filter := models.NewEmailFilter()
	query := r.URL.Query()

	filter.Categories = models.NormalizeCategories(query["category"])
	filter.Name = query.Get("name")

	if raw := query.Get("initial_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid initial_date %q: must be RFC 3339", raw)
		}
		filter.InitialDate = &parsed
	}

	if raw := query.Get("end_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid end_date %q: must be RFC 3339", raw)
		}
		filter.EndDate = &parsed
	}

	if raw := query.Get("order"); raw != "" {
		if raw != models.OrderAsc && raw != models.OrderDesc {
			return filter, fmt.Errorf("invalid order %q: must be asc or desc", raw)
		}
		filter.Order = raw
	}

	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return filter, fmt.Errorf("invalid limit %q: must be an integer >= 1", raw)
		}
		filter.Limit = parsed
	}

	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return filter, fmt.Errorf("invalid offset %q: must be an integer >= 0", raw)
		}
		filter.Offset = parsed
	}

	return filter, nil
}
