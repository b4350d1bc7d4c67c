package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects and configures the SQL backend.
type Options struct {
	Driver       string // "postgres" | "sqlite"
	DSN          string // postgres DSN or sqlite file path (":memory:" for tests)
	MaxOpenConns int
	Debug        bool // log every statement
}

// Store persists bookmarks in a SQL database through GORM.
type Store struct {
	db *gorm.DB
}

// Open connects to the database without pinging it.
func Open(opts Options) (*Store, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(opts.Driver) {
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite, "":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", opts.Driver)
	}

	level := gormLogger.Silent
	if opts.Debug {
		level = gormLogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	switch {
	case opts.Driver != DriverPostgres:
		// every sqlite connection would otherwise see its own :memory: database
		sqlDB.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	return NewStore(db), nil
}

// NewStore wraps an existing GORM handle
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the bookmarks table
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&bookmarkRow{}); err != nil {
		return fmt.Errorf("failed to migrate bookmarks table: %w", err)
	}
	return nil
}

// GetOrCreate returns the bookmark matching every field of b, inserting it
// when none exists. Lookup and insert share one transaction.
func (s *Store) GetOrCreate(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, bool, error) {
	want := fromDomain(b)
	want.ID = ""

	var (
		row     bookmarkRow
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(want.identity()).Order("created").First(&row).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row = want
		created = true
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get or create bookmark: %w", err)
	}

	out, err := row.toDomain()
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// Get retrieves a bookmark by ID
func (s *Store) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	var row bookmarkRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return row.toDomain()
}

// ListByOwner retrieves the owner's bookmarks, newest first
func (s *Store) ListByOwner(ctx context.Context, owner string, course keys.CourseKey) ([]*domain.Bookmark, error) {
	q := s.db.WithContext(ctx).Where("owner = ?", owner)
	if !course.IsZero() {
		q = q.Where("course_key = ?", course.String())
	}

	var rows []bookmarkRow
	if err := q.Order("created DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	out := make([]*domain.Bookmark, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
