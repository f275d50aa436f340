// Package db archives consultations to Postgres. The archive is an
// optional side channel: live session state lives in the session store,
// and nothing in turn processing depends on these writes succeeding.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "embed"

	"github.com/DeepikaKgithub/PharmaGEN/pkg"
)

//go:embed schema.sql
var schemaSQL string

// Repository wraps the archive database. It satisfies core.Archive.
// Notifier, when set, announces each archived report on the configured
// Postgres channel.
type Repository struct {
	DB       *sql.DB
	Notifier *Notifier
}

// NewRepository constructs a Repository from an existing sql.DB. The
// caller manages the connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// EnsureSchema applies schema.sql, creating the archive tables and
// indexes when missing. Every statement is idempotent.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply archive schema: %w", err)
	}
	return nil
}

// StartConsultation inserts the archive row for a new consultation.
func (r *Repository) StartConsultation(ctx context.Context, c *pkg.Consultation) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO consultations (id, language, lang_code, stage, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $5)
         ON CONFLICT (id) DO NOTHING`,
		c.ID, c.Language, c.LangCode, string(c.Stage), c.CreatedAt,
	)
	return err
}

// RecordTurn appends one history entry and bumps the consultation's
// activity timestamp.
func (r *Repository) RecordTurn(ctx context.Context, consultationID string, role pkg.Role, text string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO turns (consultation_id, role, content) VALUES ($1, $2, $3)`,
		consultationID, string(role), text,
	)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE consultations SET updated_at = NOW() WHERE id = $1`,
		consultationID,
	)
	return err
}

// SaveReport stores the generated report and refreshes the consultation
// row with the language and stage it ended up in.
func (r *Repository) SaveReport(ctx context.Context, c *pkg.Consultation) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO reports (consultation_id, symptoms_en, allergies_en, full_report_en, english_summary, translated_summary)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.SymptomsEN, c.AllergiesEN, c.LastReportEN, c.EnglishSummary, c.TranslatedSummary,
	)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE consultations
         SET language = $1, lang_code = $2, stage = $3, updated_at = NOW()
         WHERE id = $4`,
		c.Language, c.LangCode, string(c.Stage), c.ID,
	)
	if err != nil {
		return err
	}
	if r.Notifier != nil {
		_ = r.Notifier.ReportSaved(ctx, c.ID)
	}
	return nil
}

// ListRecent returns the most recently active consultations with their
// turn counts, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]pkg.ConsultationPreview, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.id, c.language, c.stage, COUNT(t.id), c.created_at, c.updated_at
         FROM consultations c
         LEFT JOIN turns t ON t.consultation_id = c.id
         GROUP BY c.id
         ORDER BY c.updated_at DESC
         LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pkg.ConsultationPreview
	for rows.Next() {
		var p pkg.ConsultationPreview
		var stage string
		if err := rows.Scan(&p.ID, &p.Language, &stage, &p.Turns, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Stage = pkg.Stage(stage)
		out = append(out, p)
	}
	return out, rows.Err()
}
