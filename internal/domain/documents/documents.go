package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrTooLarge = errors.New("document exceeds the size limit")
)

const MaxDocumentBytes = 20 << 20

type Document struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId,omitempty"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service stores uploaded files on disk under a per-tenant directory keyed by
// a generated uuid, with the metadata row in Postgres. The original file name
// never touches the filesystem.
type Service struct {
	DB         *pgxpool.Pool
	StorageDir string
}

func NewService(db *pgxpool.Pool, storageDir string) *Service {
	return &Service{DB: db, StorageDir: storageDir}
}

func (s *Service) Upload(ctx context.Context, tenantID, employeeID, uploadedBy, fileName, contentType string, r io.Reader) (*Document, error) {
	key := uuid.NewString()
	dir := filepath.Join(s.StorageDir, "documents", tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	path := filepath.Join(dir, key)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create document file: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(r, MaxDocumentBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > MaxDocumentBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	doc := &Document{
		ID:          key,
		EmployeeID:  employeeID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   written,
		UploadedBy:  uploadedBy,
	}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO documents (id, tenant_id, employee_id, file_name, content_type, size_bytes, uploaded_by)
    VALUES ($1, $2, NULLIF($3,'')::uuid, $4, $5, $6, NULLIF($7,'')::uuid)
    RETURNING created_at
  `, key, tenantID, employeeID, fileName, contentType, written, uploadedBy).Scan(&doc.CreatedAt)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return doc, nil
}

func (s *Service) Get(ctx context.Context, tenantID, documentID string) (*Document, error) {
	var doc Document
	err := s.DB.QueryRow(ctx, `
    SELECT id, COALESCE(employee_id::text, ''), file_name, content_type, size_bytes,
           COALESCE(uploaded_by::text, ''), created_at
    FROM documents
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, documentID).Scan(&doc.ID, &doc.EmployeeID, &doc.FileName, &doc.ContentType,
		&doc.SizeBytes, &doc.UploadedBy, &doc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Open returns the stored file for streaming. Callers close the reader.
func (s *Service) Open(ctx context.Context, tenantID, documentID string) (*Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, tenantID, documentID)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.StorageDir, "documents", tenantID, doc.ID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return doc, f, nil
}

func (s *Service) Count(ctx context.Context, tenantID, employeeID string) (int, error) {
	query := `SELECT COUNT(1) FROM documents WHERE tenant_id = $1`
	args := []any{tenantID}
	if employeeID != "" {
		query += ` AND employee_id = $2`
		args = append(args, employeeID)
	}
	var count int
	err := s.DB.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (s *Service) List(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Document, error) {
	query := `
    SELECT id, COALESCE(employee_id::text, ''), file_name, content_type, size_bytes,
           COALESCE(uploaded_by::text, ''), created_at
    FROM documents
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if employeeID != "" {
		query += ` AND employee_id = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, employeeID)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.EmployeeID, &doc.FileName, &doc.ContentType,
			&doc.SizeBytes, &doc.UploadedBy, &doc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *Service) Delete(ctx context.Context, tenantID, documentID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM documents WHERE tenant_id = $1 AND id = $2
  `, tenantID, documentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	_ = os.Remove(filepath.Join(s.StorageDir, "documents", tenantID, documentID))
	return nil
}
