package repository

import (
	"context"

	"github.com/linkgrab/linkgrab/internal/domain"
)

// UserRepository handles chat users.
type UserRepository interface {
	// GetByTelegramID retrieves a user by external identity id.
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)

	// Create inserts a new user and returns it with its assigned id.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// Update rewrites the mutable display fields of a user.
	Update(ctx context.Context, user *domain.User) error

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}

// FileRepository handles downloaded file records.
type FileRepository interface {
	// Get retrieves a file by id.
	Get(ctx context.Context, id int64) (*domain.File, error)

	// GetByFileID retrieves a file by its delivery handle.
	GetByFileID(ctx context.Context, fileID string) (*domain.File, error)

	// Create inserts a new file and returns it with its assigned id.
	Create(ctx context.Context, file *domain.File) (*domain.File, error)

	// Count returns the total number of files.
	Count(ctx context.Context) (int, error)
}

// LinkRepository is the dedup cache: normalized URL -> File.
type LinkRepository interface {
	// GetByURL retrieves a link by normalized URL. Returns ErrLinkNotFound
	// on a cache miss.
	GetByURL(ctx context.Context, url string) (*domain.Link, error)

	// Create inserts a new link. Returns ErrDuplicateLink when the
	// normalized URL is already recorded.
	Create(ctx context.Context, link *domain.Link) (*domain.Link, error)

	// ListRecent returns the newest links first.
	ListRecent(ctx context.Context, limit int) ([]*domain.Link, error)

	// Count returns the total number of links.
	Count(ctx context.Context) (int, error)
}
