package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linkgrab/linkgrab/internal/domain"
)

// SQLiteFileRepository implements FileRepository on sqlite.
type SQLiteFileRepository struct {
	db *sql.DB
}

// NewSQLiteFileRepository creates a new sqlite-backed file repository.
func NewSQLiteFileRepository(db *sql.DB) *SQLiteFileRepository {
	return &SQLiteFileRepository{db: db}
}

// Get retrieves a file by id.
func (r *SQLiteFileRepository) Get(ctx context.Context, id int64) (*domain.File, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, kind, path, telegram_file_id, downloaded_at FROM files WHERE id = ?`, id))
}

// GetByFileID retrieves a file by its delivery handle.
func (r *SQLiteFileRepository) GetByFileID(ctx context.Context, fileID string) (*domain.File, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, kind, path, telegram_file_id, downloaded_at FROM files WHERE telegram_file_id = ?`, fileID))
}

// Create inserts a new file and returns it with its assigned id.
// The delivery handle is unique once assigned.
func (r *SQLiteFileRepository) Create(ctx context.Context, file *domain.File) (*domain.File, error) {
	handle := sql.NullString{String: file.FileID, Valid: file.FileID != ""}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO files (kind, path, telegram_file_id) VALUES (?, ?, ?)`,
		string(file.Kind), file.Path, handle)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert file: duplicate delivery handle: %w", err)
		}
		return nil, fmt.Errorf("insert file: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("file insert id: %w", err)
	}
	return r.Get(ctx, id)
}

// Count returns the total number of files.
func (r *SQLiteFileRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}

func (r *SQLiteFileRepository) scanOne(row *sql.Row) (*domain.File, error) {
	var f domain.File
	var kind string
	var handle sql.NullString
	err := row.Scan(&f.ID, &kind, &f.Path, &handle, &f.DownloadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	f.Kind = domain.MediaKind(kind)
	f.FileID = handle.String
	return &f, nil
}
