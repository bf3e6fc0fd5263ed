package content

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

func newTestService() *Service {
	return NewService(slog.Default(), NewMemoryRepository())
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Trimmed  Title  ", "trimmed-title"},
		{"Already-slugged", "already-slugged"},
		{"Symbols & Stuff!!", "symbols-stuff"},
		{"2026 Roadmap", "2026-roadmap"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateDefaultsToDraftAndSlug(t *testing.T) {
	svc := newTestService()
	entry, err := svc.Create(context.Background(), CreateRequest{Title: "First Post"})
	if err != nil {
		t.Fatal(err)
	}
	if entry.Status != StatusDraft {
		t.Fatalf("status %q, want draft", entry.Status)
	}
	if entry.Slug != "first-post" {
		t.Fatalf("slug %q, want first-post", entry.Slug)
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Fatal("expected id and timestamps to be set")
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Create(context.Background(), CreateRequest{Title: "Post", Slug: "post"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(context.Background(), CreateRequest{Title: "Other", Slug: "post"})
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Create(context.Background(), CreateRequest{Title: "  "}); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := svc.Create(context.Background(), CreateRequest{Title: "Ok", Slug: "Bad Slug!"}); err == nil {
		t.Fatal("expected error for invalid slug")
	}
}

func TestUpdatePartialFields(t *testing.T) {
	svc := newTestService()
	entry, err := svc.Create(context.Background(), CreateRequest{Title: "Post", Body: "original"})
	if err != nil {
		t.Fatal(err)
	}

	newTitle := "Renamed"
	updated, err := svc.Update(context.Background(), entry.ID, UpdateRequest{Title: &newTitle})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("title %q, want Renamed", updated.Title)
	}
	if updated.Body != "original" {
		t.Fatal("body should be unchanged")
	}
	if updated.Slug != entry.Slug {
		t.Fatal("slug should be unchanged")
	}
}

func TestPublishAndUnpublish(t *testing.T) {
	svc := newTestService()
	entry, err := svc.Create(context.Background(), CreateRequest{Title: "Post"})
	if err != nil {
		t.Fatal(err)
	}

	published, err := svc.Publish(context.Background(), entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if published.Status != StatusPublished || published.PublishedAt == nil {
		t.Fatalf("expected published entry with timestamp, got %+v", published)
	}

	// Publishing again is idempotent.
	again, err := svc.Publish(context.Background(), entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !again.PublishedAt.Equal(*published.PublishedAt) {
		t.Fatal("republish must not move the publication time")
	}

	draft, err := svc.Unpublish(context.Background(), entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if draft.Status != StatusDraft || draft.PublishedAt != nil {
		t.Fatalf("expected draft without timestamp, got %+v", draft)
	}
}

func TestListFilters(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, CreateRequest{Title: "Alpha Release"})
	if _, err := svc.Create(ctx, CreateRequest{Title: "Beta Notes"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Publish(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	published, err := svc.List(ctx, ListFilter{Status: StatusPublished})
	if err != nil {
		t.Fatal(err)
	}
	if len(published) != 1 || published[0].ID != a.ID {
		t.Fatalf("unexpected published list: %+v", published)
	}

	matched, err := svc.List(ctx, ListFilter{Query: "beta"})
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].Slug != "beta-notes" {
		t.Fatalf("unexpected search result: %+v", matched)
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService()
	entry, err := svc.Create(context.Background(), CreateRequest{Title: "Doomed"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), entry.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(context.Background(), entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), entry.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound on double delete, got %v", err)
	}
}
