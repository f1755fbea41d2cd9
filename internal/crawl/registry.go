package crawl

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressindex/pressindex/pkg/postgres"
)

// Registry records crawled documents in PostgreSQL so operators can audit
// what each crawl produced.
//
// It requires a `documents` table:
//
//	CREATE TABLE documents (
//	    id         INTEGER PRIMARY KEY,
//	    title      TEXT NOT NULL,
//	    url        TEXT NOT NULL,
//	    date       TEXT NOT NULL,
//	    filename   TEXT NOT NULL,
//	    chars      INTEGER NOT NULL,
//	    fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Registry struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewRegistry creates a PostgreSQL document registry.
func NewRegistry(db *postgres.Client) *Registry {
	return &Registry{
		db:     db,
		logger: slog.Default().With("component", "crawl-registry"),
	}
}

// Record upserts one crawled article's metadata.
func (r *Registry) Record(ctx context.Context, a Article) error {
	err := r.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, title, url, date, filename, chars, fetched_at)
			 VALUES ($1, $2, $3, $4, $5, $6, NOW())
			 ON CONFLICT (id) DO UPDATE SET
			     title = EXCLUDED.title,
			     url = EXCLUDED.url,
			     date = EXCLUDED.date,
			     filename = EXCLUDED.filename,
			     chars = EXCLUDED.chars,
			     fetched_at = NOW()`,
			a.ID, a.Title, a.URL, a.Date, a.Filename, len(a.Content),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("recording document %d: %w", a.ID, err)
	}
	r.logger.Debug("document recorded", "doc_id", a.ID)
	return nil
}
