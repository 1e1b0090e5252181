package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxstream/backend/internal/models"
)

func TestParseEmailFilterDefaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/emails", nil)

	filter, err := ParseEmailFilter(req)
	require.NoError(t, err)

	assert.Empty(t, filter.Categories)
	assert.Nil(t, filter.InitialDate)
	assert.Nil(t, filter.EndDate)
	assert.Empty(t, filter.Name)
	assert.Equal(t, models.OrderDesc, filter.Order)
	assert.Equal(t, models.DefaultLimit, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
}

func TestParseEmailFilterCategories(t *testing.T) {
	t.Run("repeated and comma-joined are equivalent", func(t *testing.T) {
		joined := httptest.NewRequest("GET", "/api/v1/emails?category=a,b", nil)
		repeated := httptest.NewRequest("GET", "/api/v1/emails?category=a&category=b", nil)

		joinedFilter, err := ParseEmailFilter(joined)
		require.NoError(t, err)
		repeatedFilter, err := ParseEmailFilter(repeated)
		require.NoError(t, err)

		assert.Equal(t, joinedFilter.Categories, repeatedFilter.Categories)
		assert.Equal(t, []string{"a", "b"}, joinedFilter.Categories)
	})

	t.Run("blank segments are ignored", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/emails?category=a,,b&category=", nil)

		filter, err := ParseEmailFilter(req)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, filter.Categories)
	})
}

func TestParseEmailFilterDates(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/emails?initial_date=2025-10-15T10:00:00Z&end_date=2025-10-18T09:00:00Z", nil)

	filter, err := ParseEmailFilter(req)
	require.NoError(t, err)

	require.NotNil(t, filter.InitialDate)
	require.NotNil(t, filter.EndDate)
	assert.True(t, filter.InitialDate.Equal(time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)))
	assert.True(t, filter.EndDate.Equal(time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)))

	_, err = ParseEmailFilter(httptest.NewRequest("GET", "/api/v1/emails?initial_date=yesterday", nil))
	assert.Error(t, err)
}

func TestParseEmailFilterOrder(t *testing.T) {
	filter, err := ParseEmailFilter(httptest.NewRequest("GET", "/api/v1/emails?order=asc", nil))
	require.NoError(t, err)
	assert.Equal(t, models.OrderAsc, filter.Order)

	_, err = ParseEmailFilter(httptest.NewRequest("GET", "/api/v1/emails?order=sideways", nil))
	assert.Error(t, err)
}

func TestParseEmailFilterPagination(t *testing.T) {
	filter, err := ParseEmailFilter(httptest.NewRequest("GET", "/api/v1/emails?limit=25&offset=50", nil))
	require.NoError(t, err)
	assert.Equal(t, 25, filter.Limit)
	assert.Equal(t, 50, filter.Offset)

	_, err = ParseEmailFilter(httptest.NewRequest("GET", "/api/v1/emails?limit=0", nil))
	assert.Error(t, err, "limit below 1 is a client error")

	_, err = ParseEmailFilter(httptest.NewRequest("GET", "/api/v1/emails?offset=-1", nil))
	assert.Error(t, err, "negative offset is a client error")

	_, err = ParseEmailFilter(httptest.NewRequest("GET", "/api/v1/emails?limit=many", nil))
	assert.Error(t, err)
}
