package sql

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

// bookmarkRow is the table layout of a bookmark.
type bookmarkRow struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	Owner       string    `gorm:"column:owner;type:varchar(255);not null;index:idx_bookmark_owner_usage,priority:1"`
	CourseKey   string    `gorm:"column:course_key;type:varchar(255);not null;index"`
	UsageKey    string    `gorm:"column:usage_key;type:varchar(255);not null;index;index:idx_bookmark_owner_usage,priority:2"`
	DisplayName string    `gorm:"column:display_name;type:varchar(255);not null;default:''"`
	Path        string    `gorm:"column:path;type:text;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created;autoCreateTime"`
	ModifiedAt  time.Time `gorm:"column:modified;autoUpdateTime"`
}

func (bookmarkRow) TableName() string { return "bookmarks_bookmark" }

// BeforeCreate assigns the primary key.
func (r *bookmarkRow) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func fromDomain(b *domain.Bookmark) bookmarkRow {
	return bookmarkRow{
		ID:          b.ID,
		Owner:       b.Owner,
		CourseKey:   b.CourseKey.String(),
		UsageKey:    b.BlockKey.String(),
		DisplayName: b.DisplayName,
		Path:        b.RawPath,
	}
}

func (r *bookmarkRow) toDomain() (*domain.Bookmark, error) {
	course, err := keys.ParseCourseKey(r.CourseKey)
	if err != nil {
		return nil, fmt.Errorf("bookmark %s: %w", r.ID, err)
	}
	usage, err := keys.ParseUsageKey(r.UsageKey)
	if err != nil {
		return nil, fmt.Errorf("bookmark %s: %w", r.ID, err)
	}
	return &domain.Bookmark{
		ID:          r.ID,
		Owner:       r.Owner,
		CourseKey:   course,
		BlockKey:    usage,
		DisplayName: r.DisplayName,
		RawPath:     r.Path,
		CreatedAt:   r.CreatedAt,
		ModifiedAt:  r.ModifiedAt,
	}, nil
}

// identity returns the full field set used by find-or-create.
// A map keeps zero values (empty display name, empty path) in the WHERE clause.
func (r *bookmarkRow) identity() map[string]interface{} {
	return map[string]interface{}{
		"owner":        r.Owner,
		"course_key":   r.CourseKey,
		"usage_key":    r.UsageKey,
		"display_name": r.DisplayName,
		"path":         r.Path,
	}
}
