package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/linkgrab/linkgrab/internal/domain"
)

type fakeUsers struct {
	byTelegramID map[int64]*domain.User
	nextID       int64
	updates      int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byTelegramID: map[int64]*domain.User{}, nextID: 1}
}

func (f *fakeUsers) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	if u, ok := f.byTelegramID[telegramID]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	stored := *user
	stored.ID = f.nextID
	f.nextID++
	f.byTelegramID[stored.TelegramID] = &stored
	return &stored, nil
}

func (f *fakeUsers) Update(_ context.Context, user *domain.User) error {
	f.updates++
	f.byTelegramID[user.TelegramID] = user
	return nil
}

func (f *fakeUsers) Count(_ context.Context) (int, error) { return len(f.byTelegramID), nil }

func testUserService(users *fakeUsers) *UserService {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewUserService(users, logger)
}

func TestEnsure_CreatesOnFirstContact(t *testing.T) {
	users := newFakeUsers()
	svc := testUserService(users)

	user, err := svc.Ensure(context.Background(), 1234, "Ada", "Lovelace", "ada", "en")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("created user should have an id")
	}
	if user.Username != "ada" {
		t.Errorf("username = %q", user.Username)
	}
	if len(users.byTelegramID) != 1 {
		t.Errorf("stored users = %d, want 1", len(users.byTelegramID))
	}
}

func TestEnsure_ReturnsExistingWithoutUpdate(t *testing.T) {
	users := newFakeUsers()
	svc := testUserService(users)

	first, err := svc.Ensure(context.Background(), 1234, "Ada", "Lovelace", "ada", "en")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Ensure(context.Background(), 1234, "Ada", "Lovelace", "ada", "en")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("ids differ: %d vs %d", first.ID, second.ID)
	}
	if users.updates != 0 {
		t.Errorf("updates = %d, want 0 when nothing changed", users.updates)
	}
}

func TestEnsure_RefreshesChangedFields(t *testing.T) {
	users := newFakeUsers()
	svc := testUserService(users)

	if _, err := svc.Ensure(context.Background(), 1234, "Ada", "Lovelace", "ada", "en"); err != nil {
		t.Fatal(err)
	}
	user, err := svc.Ensure(context.Background(), 1234, "Ada", "Lovelace", "ada_l", "en")
	if err != nil {
		t.Fatal(err)
	}
	if user.Username != "ada_l" {
		t.Errorf("username = %q, want refreshed value", user.Username)
	}
	if users.updates != 1 {
		t.Errorf("updates = %d, want 1", users.updates)
	}
}
