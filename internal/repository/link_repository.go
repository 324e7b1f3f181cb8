package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linkgrab/linkgrab/internal/classify"
	"github.com/linkgrab/linkgrab/internal/domain"
)

// SQLiteLinkRepository implements LinkRepository on sqlite. URLs are run
// through classify.CleanURL on both write and lookup so the cache key is
// always the normalized form.
type SQLiteLinkRepository struct {
	db *sql.DB
}

// NewSQLiteLinkRepository creates a new sqlite-backed link repository.
func NewSQLiteLinkRepository(db *sql.DB) *SQLiteLinkRepository {
	return &SQLiteLinkRepository{db: db}
}

// GetByURL retrieves a link by normalized URL.
func (r *SQLiteLinkRepository) GetByURL(ctx context.Context, url string) (*domain.Link, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, url, platform, file_id, user_id, created_at FROM links WHERE url = ?`,
		classify.CleanURL(url))

	link, err := scanLink(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan link: %w", err)
	}
	return link, nil
}

// Create inserts a new link keyed by the normalized URL.
func (r *SQLiteLinkRepository) Create(ctx context.Context, link *domain.Link) (*domain.Link, error) {
	url := classify.CleanURL(link.URL)
	// Zero means "no reference"; bind NULL so the foreign keys stay satisfied.
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO links (url, platform, file_id, user_id) VALUES (?, ?, ?, ?)`,
		url, string(link.Platform), nullableID(link.FileID), nullableID(link.UserID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateLink
		}
		return nil, fmt.Errorf("insert link: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("link insert id: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, url, platform, file_id, user_id, created_at FROM links WHERE id = ?`, id)
	created, err := scanLink(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("scan link: %w", err)
	}
	return created, nil
}

// ListRecent returns the newest links first.
func (r *SQLiteLinkRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Link, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, url, platform, file_id, user_id, created_at
		 FROM links ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []*domain.Link
	for rows.Next() {
		link, err := scanLink(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// Count returns the total number of links.
func (r *SQLiteLinkRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}
	return n, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func scanLink(scan func(dest ...any) error) (*domain.Link, error) {
	var l domain.Link
	var platform string
	var fileID, userID sql.NullInt64
	if err := scan(&l.ID, &l.URL, &platform, &fileID, &userID, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Platform = domain.Platform(platform)
	l.FileID = fileID.Int64
	l.UserID = userID.Int64
	return &l, nil
}
