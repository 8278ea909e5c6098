package asset

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case **string:
			if v, ok := r.values[i].(string); ok {
				*p = &v
			}
		case **int:
			if v, ok := r.values[i].(int); ok {
				*p = &v
			}
		}
	}
	return nil
}

type fakeQuerier struct {
	lastSQL string
	lastArg any
	row     fakeRow
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL = sql
	if len(args) > 0 {
		q.lastArg = args[0]
	}
	return q.row
}

func TestPostgresSource_FindByURL(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{values: []any{
		"assets::a.jpg", "assets", "a.jpg", "/assets/a.jpg", "image/jpeg", 800, 600, nil,
	}}}
	src := NewPostgresSource(q)

	a, err := src.FindByURL(context.Background(), "/assets/a.jpg")
	if err != nil {
		t.Fatalf("FindByURL failed: %v", err)
	}
	if !strings.Contains(q.lastSQL, "WHERE url = $1") || q.lastArg != "/assets/a.jpg" {
		t.Errorf("unexpected query %q with %v", q.lastSQL, q.lastArg)
	}
	if a.Width != 800 || a.Height != 600 || a.MimeType != "image/jpeg" || a.Focus != "" {
		t.Errorf("unexpected asset %+v", a)
	}
}

func TestPostgresSource_NoRows(t *testing.T) {
	src := NewPostgresSource(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}})

	a, err := src.FindByID(context.Background(), "assets::missing.jpg")
	if err != nil || a != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", a, err)
	}
}

func TestPostgresSource_QueryError(t *testing.T) {
	src := NewPostgresSource(&fakeQuerier{row: fakeRow{err: errors.New("boom")}})

	if _, err := src.FindByID(context.Background(), "assets::a.jpg"); err == nil {
		t.Error("expected error")
	}
}
