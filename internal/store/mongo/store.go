package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/MrSnakeDoc/coursemark/internal/connect"
	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/keys"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
)

// CollectionName is the collection bookmarks live in
const CollectionName = "bookmarks"

// bookmarkDoc is the stored shape of a bookmark.
type bookmarkDoc struct {
	ID          string    `bson:"_id"`
	Fingerprint string    `bson:"fingerprint"`
	Owner       string    `bson:"owner"`
	CourseKey   string    `bson:"course_key"`
	UsageKey    string    `bson:"usage_key"`
	DisplayName string    `bson:"display_name"`
	Path        string    `bson:"path"`
	Created     time.Time `bson:"created"`
	Modified    time.Time `bson:"modified"`
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

// Store persists bookmarks in MongoDB.
type Store struct {
	client *mongo.Client
	c      *mongo.Collection
}

// Connect opens a client for uri and waits until the primary answers.
func Connect(ctx context.Context, uri string, retry connect.RetryOptions, log logger.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	ping := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	if err := connect.WithRetry(ctx, "mongo", redactURI(uri), ping, retry, log); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// New creates a Store over database db.
func New(client *mongo.Client, db string) *Store {
	return &Store{
		client: client,
		c:      client.Database(db).Collection(CollectionName),
	}
}

// EnsureIndexes creates the indexes find-or-create and listing rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// One document per field set
		{
			Keys:    bson.D{{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetName("idx_bookmark_fingerprint").SetUnique(true),
		},
		// Listing by owner, newest first
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "created", Value: -1}},
			Options: options.Index().SetName("idx_bookmark_owner"),
		},
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "course_key", Value: 1}, {Key: "created", Value: -1}},
			Options: options.Index().SetName("idx_bookmark_owner_course"),
		},
		{
			Keys:    bson.D{{Key: "usage_key", Value: 1}},
			Options: options.Index().SetName("idx_bookmark_usage"),
		},
	}
	if _, err := s.c.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create bookmark indexes: %w", err)
	}
	return nil
}

// GetOrCreate upserts on the bookmark fingerprint. Fields are only written on
// insert, so an existing document comes back untouched. A concurrent upsert
// losing the unique index race re-reads the winner.
func (s *Store) GetOrCreate(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, bool, error) {
	path := b.RawPath
	if path == "" {
		path = "[]"
	}
	fp := b.Fingerprint()
	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	update := bson.M{"$setOnInsert": bson.M{
		"_id":          id,
		"owner":        b.Owner,
		"course_key":   b.CourseKey.String(),
		"usage_key":    b.BlockKey.String(),
		"display_name": b.DisplayName,
		"path":         path,
		"created":      now,
		"modified":     now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc bookmarkDoc
	err := s.c.FindOneAndUpdate(ctx, bson.M{"fingerprint": fp}, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = s.c.FindOne(ctx, bson.M{"fingerprint": fp}).Decode(&doc)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get or create bookmark: %w", err)
	}

	out, err := doc.toDomain()
	if err != nil {
		return nil, false, err
	}
	return out, doc.ID == id, nil
}

// Get retrieves a bookmark by ID
func (s *Store) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	var doc bookmarkDoc
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return doc.toDomain()
}

// ListByOwner retrieves the owner's bookmarks, newest first
func (s *Store) ListByOwner(ctx context.Context, owner string, course keys.CourseKey) ([]*domain.Bookmark, error) {
	filter := bson.M{"owner": owner}
	if !course.IsZero() {
		filter["course_key"] = course.String()
	}

	cur, err := s.c.Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "created", Value: -1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmarks: %w", err)
	}

	docs := make([]bookmarkDoc, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bookmarks: %w", err)
	}

	out := make([]*domain.Bookmark, 0, len(docs))
	for i := range docs {
		b, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Ping checks the primary answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
