package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-ats/internal/feedback"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, user_id, job_title, job_description, file_name, mime_type, storage_key,
       resume_text, extraction_source, prompt_hash, status, feedback, error_code, error_message,
       created_at, updated_at`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, user_id, job_title, job_description, file_name, mime_type, storage_key,
	resume_text, extraction_source, prompt_hash, status, feedback, error_code, error_message,
	created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	payload, err := marshalFeedback(analysis.Feedback)
	if err != nil {
		return err
	}
	updatedAt := analysis.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = analysis.CreatedAt
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.JobTitle,
		analysis.JobDescription,
		analysis.FileName,
		analysis.MimeType,
		analysis.StorageKey,
		analysis.ResumeText,
		sourceOrDefault(analysis.ExtractionSource),
		analysis.PromptHash,
		analysis.Status,
		payload,
		analysis.ErrorCode,
		analysis.ErrorMessage,
		analysis.CreatedAt,
		updatedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	query := `SELECT ` + analysisColumns + `
FROM analyses
WHERE id = $1
LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// Update replaces the mutable fields of an existing analysis.
func (r *PGRepo) Update(ctx context.Context, analysis Analysis) error {
	const query = `
UPDATE analyses
SET job_title = $2,
    job_description = $3,
    mime_type = $4,
    storage_key = $5,
    resume_text = $6,
    extraction_source = $7,
    prompt_hash = $8,
    status = $9,
    feedback = $10,
    error_code = $11,
    error_message = $12,
    updated_at = $13
WHERE id = $1`
	payload, err := marshalFeedback(analysis.Feedback)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.JobTitle,
		analysis.JobDescription,
		analysis.MimeType,
		analysis.StorageKey,
		analysis.ResumeText,
		sourceOrDefault(analysis.ExtractionSource),
		analysis.PromptHash,
		analysis.Status,
		payload,
		analysis.ErrorCode,
		analysis.ErrorMessage,
		analysis.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns analyses for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + analysisColumns + `
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes an analysis owned by userID.
func (r *PGRepo) Delete(ctx context.Context, analysisID, userID string) error {
	const query = `DELETE FROM analyses WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, analysisID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var payload []byte
	var errorCode sql.NullString
	var errorMessage sql.NullString
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.JobTitle,
		&a.JobDescription,
		&a.FileName,
		&a.MimeType,
		&a.StorageKey,
		&a.ResumeText,
		&a.ExtractionSource,
		&a.PromptHash,
		&a.Status,
		&payload,
		&errorCode,
		&errorMessage,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return Analysis{}, err
	}
	if len(payload) > 0 {
		var rec feedback.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return Analysis{}, fmt.Errorf("decode feedback for %s: %w", a.ID, err)
		}
		a.Feedback = &rec
	}
	if errorCode.Valid {
		a.ErrorCode = &errorCode.String
	}
	if errorMessage.Valid {
		a.ErrorMessage = &errorMessage.String
	}
	return a, nil
}

func marshalFeedback(rec *feedback.Record) (any, error) {
	if rec == nil {
		return nil, nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode feedback: %w", err)
	}
	return payload, nil
}

func sourceOrDefault(source string) string {
	if source == "" {
		return SourceNative
	}
	return source
}
