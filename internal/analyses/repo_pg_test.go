package analyses

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var pgColumns = []string{
	"id", "user_id", "job_title", "job_description", "file_name", "mime_type", "storage_key",
	"resume_text", "extraction_source", "prompt_hash", "status", "feedback", "error_code", "error_message",
	"created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	analysis := Analysis{
		ID:             "analysis-1",
		UserID:         "user-1",
		JobTitle:       "Backend Engineer",
		JobDescription: "jd",
		FileName:       "cv.pdf",
		MimeType:       "application/pdf",
		Status:         StatusProcessing,
		CreatedAt:      created,
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			analysis.ID,
			analysis.UserID,
			analysis.JobTitle,
			analysis.JobDescription,
			analysis.FileName,
			analysis.MimeType,
			"",
			"",
			SourceNative,
			"",
			StatusProcessing,
			nil,
			nil,
			nil,
			created,
			created,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDDecodesFeedback(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	payload := `{"overallScore":70,"overallAssessment":"ok","ATS":{"score":60,"keywordMatch":40,"missingKeywords":["aws"],"tips":[]},` +
		`"toneAndStyle":{"score":60,"tips":[]},"content":{"score":60,"tips":[]},"structure":{"score":60,"tips":[]},"skills":{"score":60,"tips":[]}}`
	rows := sqlmock.NewRows(pgColumns).AddRow(
		"analysis-1", "user-1", "", "jd", "cv.pdf", "application/pdf", "analyses/x/analysis-1/cv.pdf",
		"text", SourceOCR, "hash", StatusCompleted, []byte(payload), nil, nil, now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM analyses").WithArgs("analysis-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "analysis-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Feedback == nil || got.Feedback.ATS.KeywordMatch != 40 {
		t.Fatalf("feedback not decoded: %+v", got.Feedback)
	}
	if got.ExtractionSource != SourceOCR || got.ErrorCode != nil {
		t.Fatalf("unexpected analysis: %+v", got)
	}
}

func TestPGRepoUpdateMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	code := ErrorCodeTimeout
	msg := "Analysis timed out"
	analysis := Analysis{
		ID:           "analysis-1",
		Status:       StatusFailed,
		ErrorCode:    &code,
		ErrorMessage: &msg,
		UpdatedAt:    time.Now().UTC(),
	}
	mock.ExpectExec("UPDATE analyses").
		WithArgs(
			analysis.ID, "", "", "", "", "", SourceNative, "", StatusFailed, nil,
			code, msg, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), analysis); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	code := ErrorCodeInsufficientContent
	rows := sqlmock.NewRows(pgColumns).
		AddRow("a2", "user-1", "", "jd", "", "", "", "", SourcePasted, "", StatusFailed, nil, code, "no text", now, now).
		AddRow("a1", "user-1", "", "jd", "", "", "", "", SourcePasted, "", StatusProcessing, nil, nil, nil, now.Add(-time.Hour), now)
	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("user-1", DefaultListLimit, 0).
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a2" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[0].ErrorCode == nil || *list[0].ErrorCode != code {
		t.Fatalf("error code not scanned: %+v", list[0])
	}
	if list[1].ErrorCode != nil {
		t.Fatalf("expected nil error code, got %v", *list[1].ErrorCode)
	}
}

func TestMemoryRepoUpdateKeepsOwner(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	created := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, Analysis{ID: "a1", UserID: "user-1", Status: StatusProcessing, CreatedAt: created}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Update(ctx, Analysis{ID: "a1", UserID: "intruder", Status: StatusCompleted}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.GetByID(ctx, "a1")
	if got.UserID != "user-1" || !got.CreatedAt.Equal(created) || got.Status != StatusCompleted {
		t.Fatalf("unexpected analysis after update: %+v", got)
	}
	if err := repo.Update(ctx, Analysis{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteScopedToOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM analyses").
		WithArgs("analysis-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM analyses").
		WithArgs("analysis-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "analysis-1", "user-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), "analysis-1", "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMemoryRepoDelete(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, id := range []string{"a1", "a2"} {
		if err := repo.Create(ctx, Analysis{ID: id, UserID: "user-1", CreatedAt: now}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := repo.Delete(ctx, "a1", "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
	if err := repo.Delete(ctx, "a1", "user-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted analysis to be gone, got %v", err)
	}
	list, err := repo.ListByUser(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 || list[0].ID != "a2" {
		t.Fatalf("unexpected list after delete: %+v", list)
	}
	if err := repo.Delete(ctx, "a1", "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
