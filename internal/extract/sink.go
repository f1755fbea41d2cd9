package extract

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressindex/pressindex/pkg/postgres"
)

// Sink persists extraction matches in PostgreSQL.
//
// It requires an `extraction_matches` table:
//
//	CREATE TABLE extraction_matches (
//	    id           BIGSERIAL PRIMARY KEY,
//	    doc_id       INTEGER NOT NULL,
//	    field        TEXT NOT NULL,
//	    value        TEXT NOT NULL,
//	    context      TEXT NOT NULL DEFAULT '',
//	    extracted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Sink struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewSink creates a PostgreSQL extraction sink.
func NewSink(db *postgres.Client) *Sink {
	return &Sink{
		db:     db,
		logger: slog.Default().With("component", "extraction-sink"),
	}
}

// StoreReport replaces each document's stored matches with the report's, one
// transaction per document so a failure never leaves a document half
// written.
func (s *Sink) StoreReport(ctx context.Context, report *Report) error {
	var rows int
	for _, de := range report.Documents {
		err := s.db.InTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM extraction_matches WHERE doc_id = $1`, de.DocID,
			); err != nil {
				return fmt.Errorf("clearing matches for doc %d: %w", de.DocID, err)
			}
			for field, matches := range de.Fields {
				for _, m := range matches {
					if _, err := tx.ExecContext(ctx,
						`INSERT INTO extraction_matches (doc_id, field, value, context) VALUES ($1, $2, $3, $4)`,
						de.DocID, field, m.Value, m.Context,
					); err != nil {
						return fmt.Errorf("inserting match for doc %d: %w", de.DocID, err)
					}
					rows++
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	s.logger.Info("extraction report stored", "documents", len(report.Documents), "rows", rows)
	return nil
}
