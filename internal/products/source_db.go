package products

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

const queryTimeout = 5 * time.Second

// Querier is the slice of a pgx pool the postgres source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresSource struct {
	db   Querier
	desc Descriptor
}

func NewPostgresSource(db Querier, d Descriptor) *PostgresSource {
	d.Kind = KindPostgres
	if d.Table == "" {
		d.Table = "reviews"
	}
	return &PostgresSource{db: db, desc: d}
}

func (s *PostgresSource) Descriptor() Descriptor { return s.desc }

func (s *PostgresSource) query() string {
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY id LIMIT $1",
		strings.Join(reviewColumns, ", "),
		pgx.Identifier(strings.Split(s.desc.Table, ".")).Sanitize(),
	)
}

func (s *PostgresSource) ReadReviews(ctx context.Context, limit int) ([]Review, error) {
	var out []Review

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.Query(ctx, s.query(), limit)
		if err != nil {
			return unavailable("query "+s.desc.Table, err)
		}
		defer rows.Close()

		out = make([]Review, 0, min(limit, MaxRows))
		for rows.Next() {
			var r Review
			if err := rows.Scan(
				&r.ID, &r.ProductID, &r.UserID, &r.ProfileName,
				&r.HelpfulnessNumerator, &r.HelpfulnessDenominator,
				&r.Score, &r.Time, &r.Summary, &r.Text,
			); err != nil {
				return &MalformedRecordError{Row: len(out) + 1, Err: err}
			}
			out = append(out, r)
		}
		if err := rows.Err(); err != nil {
			return unavailable("read "+s.desc.Table, err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
