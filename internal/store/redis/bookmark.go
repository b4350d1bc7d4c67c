package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

// bookmarkDoc is the JSON body stored at BookmarkKey.
type bookmarkDoc struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	CourseKey   string    `json:"course_key"`
	UsageKey    string    `json:"usage_key"`
	DisplayName string    `json:"display_name"`
	Path        string    `json:"path"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

func (d *bookmarkDoc) toDomain() (*domain.Bookmark, error) {
	course, err := keys.ParseCourseKey(d.CourseKey)
	if err != nil {
		return nil, fmt.Errorf("bookmark %s: %w", d.ID, err)
	}
	usage, err := keys.ParseUsageKey(d.UsageKey)
	if err != nil {
		return nil, fmt.Errorf("bookmark %s: %w", d.ID, err)
	}
	return &domain.Bookmark{
		ID:          d.ID,
		Owner:       d.Owner,
		CourseKey:   course,
		BlockKey:    usage,
		DisplayName: d.DisplayName,
		RawPath:     d.Path,
		CreatedAt:   d.Created,
		ModifiedAt:  d.Modified,
	}, nil
}

// claimScript adds an ID to the owner set and claims the lookup key in one
// step, or re-adds the current holder when the key is already claimed.
// SADD runs first so a failure leaves nothing claimed.
//
// KEYS[1] lookup key, KEYS[2] owner set; ARGV[1] candidate ID.
// Returns the ID holding the lookup key.
var claimScript = redis.NewScript(`
local holder = redis.call('GET', KEYS[1])
if holder then
	redis.call('SADD', KEYS[2], holder)
	return holder
end
redis.call('SADD', KEYS[2], ARGV[1])
redis.call('SET', KEYS[1], ARGV[1])
return ARGV[1]
`)

// GetOrCreate returns the bookmark matching every field of b, saving it
// when none exists.
//
// The body is written first, then claimScript claims the lookup key and
// records the ID in the owner set. A writer that loses the claim removes
// its body and returns the holder.
func (s *Store) GetOrCreate(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, bool, error) {
	path := b.RawPath
	if path == "" {
		path = "[]"
	}
	lookup := LookupKey(b.Fingerprint())
	owner := OwnerKey(b.Owner)

	existing, err := s.client.Get(ctx, lookup).Result()
	switch {
	case err == nil:
		// Re-add in case an earlier write stopped before the owner set
		if err := s.client.SAdd(ctx, owner, existing).Err(); err != nil {
			return nil, false, fmt.Errorf("failed to add bookmark to owner set: %w", err)
		}
		found, err := s.Get(ctx, existing)
		return found, false, err
	case !errors.Is(err, redis.Nil):
		return nil, false, fmt.Errorf("failed to read lookup key: %w", err)
	}

	now := s.now().UTC()
	doc := bookmarkDoc{
		ID:          uuid.NewString(),
		Owner:       b.Owner,
		CourseKey:   b.CourseKey.String(),
		UsageKey:    b.BlockKey.String(),
		DisplayName: b.DisplayName,
		Path:        path,
		Created:     now,
		Modified:    now,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	// Store bookmark data
	if err := s.client.Set(ctx, BookmarkKey(doc.ID), data, 0).Err(); err != nil {
		return nil, false, fmt.Errorf("failed to save bookmark: %w", err)
	}

	holder, err := claimScript.Run(ctx, s.client, []string{lookup, owner}, doc.ID).Text()
	if err != nil {
		_ = s.client.Del(ctx, BookmarkKey(doc.ID)).Err()
		return nil, false, fmt.Errorf("failed to claim lookup key: %w", err)
	}
	if holder != doc.ID {
		_ = s.client.Del(ctx, BookmarkKey(doc.ID)).Err()
		found, err := s.Get(ctx, holder)
		return found, false, err
	}

	out, err := doc.toDomain()
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Get retrieves a bookmark from Redis by ID
func (s *Store) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var doc bookmarkDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	return doc.toDomain()
}

// ListByOwner retrieves the owner's bookmarks, newest first
func (s *Store) ListByOwner(ctx context.Context, owner string, course keys.CourseKey) ([]*domain.Bookmark, error) {
	ids, err := s.client.SMembers(ctx, OwnerKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}

	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	bodyKeys := make([]string, len(ids))
	for i, id := range ids {
		bodyKeys[i] = BookmarkKey(id)
	}
	values, err := s.client.MGet(ctx, bodyKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	out := make([]*domain.Bookmark, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Skip IDs whose body is gone
			continue
		}
		var doc bookmarkDoc
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
		}
		if !course.IsZero() && doc.CourseKey != course.String() {
			continue
		}
		b, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
