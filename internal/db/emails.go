package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inboxstream/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEmailNotFound is returned when a requested email cannot be found.
var ErrEmailNotFound = errors.New("email not found")

// ErrEmailExists is returned when an email with the same id already exists.
var ErrEmailExists = errors.New("email already exists")

const emailColumns = `id, subject, body, category, date, inserted_at, updated_at, deleted_at`

// Store provides persistence for email records on top of a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateEmail inserts a new email and returns the stored row, including
// server-assigned bookkeeping timestamps. A duplicate id surfaces
// ErrEmailExists.
func (s *Store) CreateEmail(ctx context.Context, email *models.Email) (*models.Email, error) {
	var stored models.Email

	err := s.pool.QueryRow(ctx, `
		INSERT INTO emails (id, subject, body, category, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+emailColumns+`
	`,
		email.ID,
		email.Subject,
		email.Body,
		email.Category,
		email.Date,
	).Scan(
		&stored.ID,
		&stored.Subject,
		&stored.Body,
		&stored.Category,
		&stored.Date,
		&stored.InsertedAt,
		&stored.UpdatedAt,
		&stored.DeletedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrEmailExists
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create email: %w", err)
	}

	return &stored, nil
}

// GetEmailByID returns the email with the given id, or ErrEmailNotFound.
func (s *Store) GetEmailByID(ctx context.Context, id string) (*models.Email, error) {
	var email models.Email

	err := s.pool.QueryRow(ctx, `
		SELECT `+emailColumns+`
		FROM emails
		WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(
		&email.ID,
		&email.Subject,
		&email.Body,
		&email.Category,
		&email.Date,
		&email.InsertedAt,
		&email.UpdatedAt,
		&email.DeletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmailNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get email: %w", err)
	}

	return &email, nil
}

// ListEmails returns one page of emails matching the filter, together with
// the total number of matches ignoring pagination. The page query and the
// count query are derived from the same filter and run inside a single
// read-only transaction so they observe the same snapshot.
func (s *Store) ListEmails(ctx context.Context, filter models.EmailFilter) ([]*models.Email, int, error) {
	where, args := buildEmailPredicates(filter)

	orderDirection := "DESC"
	if filter.Order == models.OrderAsc {
		orderDirection = "ASC"
	}

	pageQuery := fmt.Sprintf(`
		SELECT `+emailColumns+`
		FROM emails
		WHERE %s
		ORDER BY date %s NULLS LAST, id ASC
		LIMIT $%d OFFSET $%d
	`, where, orderDirection, len(args)+1, len(args)+2)
	pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM emails WHERE %s`, where)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list emails: %w", err)
	}

	var emails []*models.Email
	for rows.Next() {
		var email models.Email
		if err := rows.Scan(
			&email.ID,
			&email.Subject,
			&email.Body,
			&email.Category,
			&email.Date,
			&email.InsertedAt,
			&email.UpdatedAt,
			&email.DeletedAt,
		); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, &email)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating emails: %w", err)
	}

	var total int
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count emails: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to commit read transaction: %w", err)
	}

	return emails, total, nil
}

// buildEmailPredicates composes the filter's predicates into one WHERE
// clause plus its positional arguments. The same clause feeds both the page
// and the count query so they can never diverge.
func buildEmailPredicates(filter models.EmailFilter) (string, []any) {
	clauses := []string{"deleted_at IS NULL"}
	var args []any

	if len(filter.Categories) > 0 {
		args = append(args, filter.Categories)
		clauses = append(clauses, fmt.Sprintf("LOWER(category) = ANY($%d)", len(args)))
	}

	if filter.InitialDate != nil {
		args = append(args, *filter.InitialDate)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}

	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		clauses = append(clauses, fmt.Sprintf("date <= $%d", len(args)))
	}

	if filter.Name != "" {
		args = append(args, "%"+escapeLike(filter.Name)+"%")
		clauses = append(clauses, fmt.Sprintf("(subject ILIKE $%d OR body ILIKE $%d)", len(args), len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

// escapeLike escapes LIKE metacharacters so the search text matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
