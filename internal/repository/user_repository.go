package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linkgrab/linkgrab/internal/domain"
)

// SQLiteUserRepository implements UserRepository on sqlite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new sqlite-backed user repository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// GetByTelegramID retrieves a user by external identity id.
func (r *SQLiteUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, telegram_id, first_name, last_name, username, lang_code, created_at
		 FROM users WHERE telegram_id = ?`, telegramID)

	var u domain.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.Username, &u.LangCode, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a new user and returns it with its assigned id.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.LangCode == "" {
		user.LangCode = "en"
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (telegram_id, first_name, last_name, username, lang_code)
		 VALUES (?, ?, ?, ?, ?)`,
		user.TelegramID, user.FirstName, user.LastName, user.Username, user.LangCode)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user insert id: %w", err)
	}
	return r.get(ctx, id)
}

// Update rewrites the mutable display fields of a user.
func (r *SQLiteUserRepository) Update(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, username = ?, lang_code = ?
		 WHERE telegram_id = ?`,
		user.FirstName, user.LastName, user.Username, user.LangCode, user.TelegramID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Count returns the total number of users.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *SQLiteUserRepository) get(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, telegram_id, first_name, last_name, username, lang_code, created_at
		 FROM users WHERE id = ?`, id)

	var u domain.User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.Username, &u.LangCode, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
