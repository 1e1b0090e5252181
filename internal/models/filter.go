package models

import (
	"strings"
	"time"
)

// Sort orders for EmailFilter.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Default pagination window for email queries.
const (
	DefaultLimit = 10
)

// EmailFilter is the request-scoped set of predicates plus ordering and
// pagination for one query call. The zero value means "everything,
// newest first" — callers should go through NewEmailFilter to get the
// pagination defaults.
type EmailFilter struct {
	// Categories holds normalized (lowercase, deduplicated, non-blank)
	// category names. Empty means no category constraint.
	Categories []string
	// InitialDate and EndDate are inclusive bounds on the email's
	// business date. Nil means unbounded.
	InitialDate *time.Time
	EndDate     *time.Time
	// Name is a case-insensitive substring matched against subject OR
	// body. Empty means no constraint.
	Name string
	// Order is OrderAsc or OrderDesc, by date.
	Order  string
	Limit  int
	Offset int
}

// NewEmailFilter returns a filter with the default ordering and pagination.
func NewEmailFilter() EmailFilter {
	return EmailFilter{
		Order: OrderDesc,
		Limit: DefaultLimit,
	}
}

// NormalizeCategories merges repeated and comma-joined category values into
// one canonical lowercase set, discarding blanks and duplicates. Order of
// first appearance is preserved.
func NormalizeCategories(values []string) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			category := strings.ToLower(strings.TrimSpace(part))
			if category == "" {
				continue
			}
			if _, ok := seen[category]; ok {
				continue
			}
			seen[category] = struct{}{}
			categories = append(categories, category)
		}
	}
	return categories
}

// EmailsResponse is the query boundary response: one page of emails plus
// the total number of matches ignoring pagination.
type EmailsResponse struct {
	Items []*Email `json:"items"`
	Total int      `json:"total"`
}
