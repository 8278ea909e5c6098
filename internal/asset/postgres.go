package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource reads assets from the assets table.
type PostgresSource struct {
	db Querier
}

func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

const selectAsset = `
	SELECT id, container, path, url, mime_type, width, height, focus
	FROM assets
`

func (s *PostgresSource) FindByURL(ctx context.Context, url string) (*Asset, error) {
	return s.findOne(ctx, selectAsset+`WHERE url = $1`, url)
}

func (s *PostgresSource) FindByID(ctx context.Context, id string) (*Asset, error) {
	return s.findOne(ctx, selectAsset+`WHERE id = $1`, id)
}

func (s *PostgresSource) findOne(ctx context.Context, query string, arg string) (*Asset, error) {
	var a Asset
	var mimeType, focus *string
	var width, height *int

	err := s.db.QueryRow(ctx, query, arg).Scan(
		&a.ID,
		&a.Container,
		&a.Path,
		&a.URL,
		&mimeType,
		&width,
		&height,
		&focus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query assets: %w", err)
	}

	if mimeType != nil {
		a.MimeType = *mimeType
	}
	if width != nil {
		a.Width = *width
	}
	if height != nil {
		a.Height = *height
	}
	if focus != nil {
		a.Focus = *focus
	}
	return &a, nil
}
