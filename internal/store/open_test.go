package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/config"
	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/keys"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
)

func testConfig(driver, dsn string) *config.Config {
	return &config.Config{
		StoreDriver:    driver,
		SQLDSN:         dsn,
		ConnectTimeout: time.Second,
		RetryInterval:  50 * time.Millisecond,
		MaxWait:        100 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestOpenSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "coursemark.db")
	ctx := context.Background()

	s, err := Open(ctx, testConfig(config.StoreSQLite, dsn), logger.New("error", false))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = s.Close(ctx) }()

	course := keys.CourseKey{Org: "edX", Course: "DemoX", Run: "2024"}
	b := &domain.Bookmark{Owner: "alice", CourseKey: course, BlockKey: course.MakeUsageKey("chapter", "c1")}
	if _, created, err := s.GetOrCreate(ctx, b); err != nil || !created {
		t.Errorf("GetOrCreate() created = %v, error = %v", created, err)
	}
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(context.Background(), testConfig("oracle", ""), logger.New("error", false))
	if err == nil {
		t.Error("Open() with unsupported driver should return error")
	}
}

func TestRetryOptions(t *testing.T) {
	opts := RetryOptions(testConfig(config.StoreSQLite, ""))
	if err := opts.Validate(); err != nil {
		t.Errorf("RetryOptions() invalid: %v", err)
	}
}
