package service

import (
	"context"
	"fmt"

	"github.com/linkgrab/linkgrab/internal/classify"
	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/internal/repository"
)

// Stats are aggregate counts over the store.
type Stats struct {
	Users int `json:"users"`
	Files int `json:"files"`
	Links int `json:"links"`
}

// StatsService exposes read-only views over the store for the operator API
// and the admin dashboard.
type StatsService struct {
	users repository.UserRepository
	files repository.FileRepository
	links repository.LinkRepository
}

// NewStatsService creates a new stats service.
func NewStatsService(users repository.UserRepository, files repository.FileRepository, links repository.LinkRepository) *StatsService {
	return &StatsService{users: users, files: files, links: links}
}

// Stats returns aggregate counts.
func (s *StatsService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	files, err := s.files.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	links, err := s.links.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count links: %w", err)
	}
	return &Stats{Users: users, Files: files, Links: links}, nil
}

// RecentLinks returns the newest recorded links.
func (s *StatsService) RecentLinks(ctx context.Context, limit int) ([]*domain.Link, error) {
	return s.links.ListRecent(ctx, limit)
}

// LookupLink resolves a raw URL through the same normalization the pipeline
// uses and returns the link with its file, or ErrLinkNotFound.
func (s *StatsService) LookupLink(ctx context.Context, rawURL string) (*domain.Link, *domain.File, error) {
	link, err := s.links.GetByURL(ctx, classify.CleanURL(rawURL))
	if err != nil {
		return nil, nil, err
	}
	file, err := s.files.Get(ctx, link.FileID)
	if err != nil {
		return nil, nil, err
	}
	return link, file, nil
}
