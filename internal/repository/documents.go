package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

// Document is one uploaded file awaiting or holding an extraction.
type Document struct {
	ID            uuid.UUID
	ApplicationID string
	Filename      string
	MIMEType      string
	DocumentType  constants.DocumentType // caller hint; empty means detect
	ResultType    constants.DocumentType // type the last extraction settled on
	Content       []byte
	Status        constants.DocumentStatus
	RetryCount    int
	Result        *document.Result
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context, applicationID string) ([]*Document, error)
	ListPending(ctx context.Context, applicationID string) ([]*Document, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	SaveResult(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, res document.Result) error
	ClaimRetry(ctx context.Context, id uuid.UUID, maxRetries int) (int, error)
}

type documentRepo struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{db: db, logger: logger, now: time.Now}
}

const documentColumns = `id, application_id, filename, mime_type, document_type, result_type, content, status,
	retry_count, result_json, created_at, updated_at`

func (r *documentRepo) Create(ctx context.Context, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.Status == "" {
		doc.Status = constants.StatusPending
	}
	now := r.now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	_, err := r.db.exec(ctx, `INSERT INTO documents
	(id, application_id, filename, mime_type, document_type, content, status, retry_count, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID.String(), doc.ApplicationID, doc.Filename, doc.MIMEType, string(doc.DocumentType),
		doc.Content, string(doc.Status), doc.RetryCount, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		r.logger.Error("failed to create document", "application_id", doc.ApplicationID, "filename", doc.Filename, "error", err)
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *documentRepo) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	row := r.db.queryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id.String())
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get document", "document_id", id, "error", err)
		return nil, err
	}
	return doc, nil
}

func (r *documentRepo) List(ctx context.Context, applicationID string) ([]*Document, error) {
	return r.list(ctx, applicationID, "")
}

// ListPending returns pending documents oldest first; an empty
// applicationID lists across all applications.
func (r *documentRepo) ListPending(ctx context.Context, applicationID string) ([]*Document, error) {
	return r.list(ctx, applicationID, constants.StatusPending)
}

func (r *documentRepo) list(ctx context.Context, applicationID string, status constants.DocumentStatus) ([]*Document, error) {
	var where []string
	var args []any
	if applicationID != "" {
		where = append(where, "application_id = ?")
		args = append(args, applicationID)
	}
	if status != "" {
		where = append(where, "status = ?")
		args = append(args, string(status))
	}
	q := `SELECT ` + documentColumns + ` FROM documents`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at, id`

	rows, err := r.db.query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list documents", "application_id", applicationID, "status", status, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// MarkProcessing claims a pending or failed document.
func (r *documentRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.exec(ctx, `UPDATE documents SET status = ?, updated_at = ?
	WHERE id = ? AND status IN (?, ?)`,
		string(constants.StatusProcessing), r.now().UTC().UnixMilli(), id.String(),
		string(constants.StatusPending), string(constants.StatusFailed))
	if err != nil {
		r.logger.Error("failed to mark document processing", "document_id", id, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("document %s is not pending", id), common.ErrInvalidInput)
	}
	return nil
}

func (r *documentRepo) SaveResult(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, res document.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	out, err := r.db.exec(ctx, `UPDATE documents SET status = ?, result_type = ?, provider = ?,
	overall_confidence = ?, error_code = ?, error_message = ?, result_json = ?, updated_at = ?
	WHERE id = ?`,
		string(status), string(res.DocumentType), res.Provider, res.OverallConfidence,
		res.ErrorCode, res.Error, string(raw), r.now().UTC().UnixMilli(), id.String())
	if err != nil {
		r.logger.Error("failed to save extraction result", "document_id", id, "error", err)
		return err
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// ClaimRetry moves a failed document to processing and bumps its retry
// counter in one statement, so concurrent callers cannot push the counter
// past maxRetries. It returns the new count.
func (r *documentRepo) ClaimRetry(ctx context.Context, id uuid.UUID, maxRetries int) (int, error) {
	var count int
	err := r.db.queryRow(ctx, `UPDATE documents SET status = ?, retry_count = retry_count + 1, updated_at = ?
	WHERE id = ? AND status = ? AND retry_count < ?
	RETURNING retry_count`,
		string(constants.StatusProcessing), r.now().UTC().UnixMilli(), id.String(),
		string(constants.StatusFailed), maxRetries).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.logger.Error("failed to claim retry", "document_id", id, "error", err)
		return 0, err
	}

	doc, err := r.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if doc.Status != constants.StatusFailed {
		return 0, common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("document %s is %s; only failed documents can be retried", id, doc.Status), common.ErrInvalidInput)
	}
	return 0, common.NewAppError(common.CodeRetryLimit,
		fmt.Sprintf("document %s has been retried %d times", id, doc.RetryCount), common.ErrRetryLimit)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*Document, error) {
	var (
		doc              Document
		id, dt, rt       string
		status           string
		result           sql.NullString
		created, updated int64
	)
	if err := s.Scan(&id, &doc.ApplicationID, &doc.Filename, &doc.MIMEType, &dt, &rt, &doc.Content, &status,
		&doc.RetryCount, &result, &created, &updated); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("document id %q: %w", id, err)
	}
	doc.ID = parsed
	doc.DocumentType = constants.DocumentType(dt)
	doc.ResultType = constants.DocumentType(rt)
	doc.Status = constants.DocumentStatus(status)
	doc.CreatedAt = time.UnixMilli(created).UTC()
	doc.UpdatedAt = time.UnixMilli(updated).UTC()
	if result.Valid && result.String != "" {
		var res document.Result
		if err := json.Unmarshal([]byte(result.String), &res); err != nil {
			return nil, fmt.Errorf("decode result of %s: %w", id, err)
		}
		doc.Result = &res
	}
	return &doc, nil
}
