package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/coursemark/internal/connect"
	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/keys"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
)

var (
	demo    = keys.CourseKey{Org: "edX", Course: "DemoX", Run: "2024"}
	physics = keys.CourseKey{Org: "MITx", Course: "8.01x", Run: "2024"}
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("COURSEMARK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("COURSEMARK_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	retry := connect.RetryOptions{
		ConnectTimeout: 5 * time.Second,
		RetryInterval:  200 * time.Millisecond,
		MaxWait:        time.Second,
		PingTimeout:    time.Second,
		WarnThreshold:  1,
	}
	client, err := Connect(ctx, uri, retry, logger.New("error", false))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	db := "coursemark_test_" + uuid.NewString()[:8]
	s := New(client, db)
	t.Cleanup(func() {
		_ = client.Database(db).Drop(context.Background())
		_ = s.Close(context.Background())
	})

	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}
	return s
}

func newBookmark(owner string, course keys.CourseKey, blockID, name string) *domain.Bookmark {
	return &domain.Bookmark{
		Owner:       owner,
		CourseKey:   course,
		BlockKey:    course.MakeUsageKey("vertical", blockID),
		DisplayName: name,
		RawPath:     `[{"usage_id":"x","display_name":"Chapter"}]`,
	}
}

func TestRedactURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "no credentials", uri: "mongodb://localhost:27017", expected: "mongodb://localhost:27017"},
		{name: "password hidden", uri: "mongodb://app:secret@db:27017/coursemark", expected: "mongodb://app:xxxxx@db:27017/coursemark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactURI(tt.uri); got != tt.expected {
				t.Errorf("redactURI() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetOrCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, created, err := s.GetOrCreate(ctx, newBookmark("alice", demo, "u1", "Unit 1"))
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if !created || first.ID == "" {
		t.Errorf("GetOrCreate() = %+v, created %v", first, created)
	}

	second, created, err := s.GetOrCreate(ctx, newBookmark("alice", demo, "u1", "Unit 1"))
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if created || second.ID != first.ID {
		t.Errorf("GetOrCreate() = %s created %v, want existing %s", second.ID, created, first.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("GetOrCreate() must not rewrite an existing document")
	}

	renamed, created, err := s.GetOrCreate(ctx, newBookmark("alice", demo, "u1", "Unit One"))
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if !created || renamed.ID == first.ID {
		t.Error("GetOrCreate() with a new display name should insert a second document")
	}
}

func TestGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, _, err := s.GetOrCreate(ctx, newBookmark("alice", demo, "u1", "Unit 1"))
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.BlockKey != saved.BlockKey || got.RawPath != saved.RawPath {
		t.Errorf("Get() = %+v, want %+v", got, saved)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestListByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, b := range []*domain.Bookmark{
		newBookmark("alice", demo, "u1", "Unit 1"),
		newBookmark("alice", demo, "u2", "Unit 2"),
		newBookmark("alice", physics, "u1", "Kinematics"),
		newBookmark("bob", demo, "u1", "Unit 1"),
	} {
		if _, _, err := s.GetOrCreate(ctx, b); err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
	}

	tests := []struct {
		name     string
		owner    string
		course   keys.CourseKey
		expected int
	}{
		{name: "all courses", owner: "alice", expected: 3},
		{name: "one course", owner: "alice", course: demo, expected: 2},
		{name: "other owner", owner: "bob", expected: 1},
		{name: "unknown owner", owner: "carol", expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := s.ListByOwner(ctx, tt.owner, tt.course)
			if err != nil {
				t.Fatalf("ListByOwner() error = %v", err)
			}
			if len(list) != tt.expected {
				t.Errorf("ListByOwner() returned %d, want %d", len(list), tt.expected)
			}
		})
	}
}

func TestGetOrCreateKeepsInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := &domain.Bookmark{Owner: "alice", CourseKey: demo, BlockKey: demo.MakeUsageKey("chapter", "c1")}
	saved, _, err := s.GetOrCreate(ctx, b)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if b.RawPath != "" {
		t.Errorf("GetOrCreate() changed input RawPath to %q", b.RawPath)
	}
	if saved.RawPath != "[]" {
		t.Errorf("saved RawPath = %q, want %q", saved.RawPath, "[]")
	}
}
