package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/linkgrab/linkgrab/internal/domain"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteUserRepository(testDB(t))

	created, err := repo.Create(ctx, &domain.User{
		TelegramID: 42,
		FirstName:  "Ada",
		Username:   "ada",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("created user should have an id")
	}
	if created.LangCode != "en" {
		t.Errorf("LangCode = %q, want default en", created.LangCode)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := repo.GetByTelegramID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByTelegramID failed: %v", err)
	}
	if got.FirstName != "Ada" || got.Username != "ada" {
		t.Errorf("got %+v", got)
	}
}

func TestUserRepository_GetMissing(t *testing.T) {
	repo := NewSQLiteUserRepository(testDB(t))
	_, err := repo.GetByTelegramID(context.Background(), 999)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteUserRepository(testDB(t))

	if _, err := repo.Create(ctx, &domain.User{TelegramID: 42, FirstName: "Ada"}); err != nil {
		t.Fatal(err)
	}
	err := repo.Update(ctx, &domain.User{TelegramID: 42, FirstName: "Grace", LangCode: "en"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByTelegramID(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if got.FirstName != "Grace" {
		t.Errorf("FirstName = %q, want Grace", got.FirstName)
	}
}

func TestFileRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteFileRepository(testDB(t))

	created, err := repo.Create(ctx, &domain.File{
		Kind:   domain.MediaImage,
		Path:   "media/instagram/images/ABC123.jpg",
		FileID: "tg-file-1",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Kind != domain.MediaImage || got.FileID != "tg-file-1" {
		t.Errorf("got %+v", got)
	}

	byHandle, err := repo.GetByFileID(ctx, "tg-file-1")
	if err != nil {
		t.Fatalf("GetByFileID failed: %v", err)
	}
	if byHandle.ID != created.ID {
		t.Errorf("byHandle.ID = %d, want %d", byHandle.ID, created.ID)
	}
}

func TestFileRepository_DuplicateHandle(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteFileRepository(testDB(t))

	if _, err := repo.Create(ctx, &domain.File{Kind: domain.MediaImage, Path: "a.jpg", FileID: "h1"}); err != nil {
		t.Fatal(err)
	}
	_, err := repo.Create(ctx, &domain.File{Kind: domain.MediaVideo, Path: "b.mp4", FileID: "h1"})
	if err == nil {
		t.Fatal("duplicate delivery handle should be rejected")
	}
}

func TestLinkRepository_NormalizesOnWriteAndLookup(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	files := NewSQLiteFileRepository(db)
	links := NewSQLiteLinkRepository(db)

	file, err := files.Create(ctx, &domain.File{Kind: domain.MediaImage, Path: "ABC123.jpg", FileID: "h1"})
	if err != nil {
		t.Fatal(err)
	}

	created, err := links.Create(ctx, &domain.Link{
		URL:      "https://www.instagram.com/p/ABC123/?utm=1",
		Platform: domain.PlatformInstagram,
		FileID:   file.ID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.URL != "instagram.com/p/ABC123" {
		t.Errorf("stored URL = %q, want normalized", created.URL)
	}

	// Lookup with a differently decorated variant of the same URL.
	got, err := links.GetByURL(ctx, "http://instagram.com/p/ABC123/")
	if err != nil {
		t.Fatalf("GetByURL failed: %v", err)
	}
	if got.ID != created.ID || got.FileID != file.ID {
		t.Errorf("got %+v", got)
	}
}

func TestLinkRepository_CreateWithoutReferences(t *testing.T) {
	ctx := context.Background()
	links := NewSQLiteLinkRepository(testDB(t))

	// No file or user rows exist yet; absent references must not trip
	// the foreign keys.
	created, err := links.Create(ctx, &domain.Link{
		URL:      "instagram.com/p/ABC123",
		Platform: domain.PlatformInstagram,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.FileID != 0 || created.UserID != 0 {
		t.Errorf("got FileID=%d UserID=%d, want both zero", created.FileID, created.UserID)
	}

	got, err := links.GetByURL(ctx, "instagram.com/p/ABC123")
	if err != nil {
		t.Fatalf("GetByURL failed: %v", err)
	}
	if got.FileID != 0 || got.UserID != 0 {
		t.Errorf("read back FileID=%d UserID=%d, want both zero", got.FileID, got.UserID)
	}
}

func TestLinkRepository_DuplicateURL(t *testing.T) {
	ctx := context.Background()
	links := NewSQLiteLinkRepository(testDB(t))

	if _, err := links.Create(ctx, &domain.Link{URL: "instagram.com/p/ABC123", Platform: domain.PlatformInstagram}); err != nil {
		t.Fatal(err)
	}

	// Same logical URL with scheme and query must conflict.
	_, err := links.Create(ctx, &domain.Link{URL: "https://www.instagram.com/p/ABC123/?x=1", Platform: domain.PlatformInstagram})
	if !errors.Is(err, domain.ErrDuplicateLink) {
		t.Fatalf("err = %v, want ErrDuplicateLink", err)
	}
}

func TestLinkRepository_Miss(t *testing.T) {
	links := NewSQLiteLinkRepository(testDB(t))
	_, err := links.GetByURL(context.Background(), "instagram.com/p/NOPE")
	if !errors.Is(err, domain.ErrLinkNotFound) {
		t.Fatalf("err = %v, want ErrLinkNotFound", err)
	}
}

func TestLinkRepository_ListRecentAndCount(t *testing.T) {
	ctx := context.Background()
	links := NewSQLiteLinkRepository(testDB(t))

	for _, u := range []string{"instagram.com/p/A", "instagram.com/p/B", "instagram.com/p/C"} {
		if _, err := links.Create(ctx, &domain.Link{URL: u, Platform: domain.PlatformInstagram}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := links.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].URL != "instagram.com/p/C" {
		t.Errorf("newest first, got %q", recent[0].URL)
	}

	n, err := links.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}
