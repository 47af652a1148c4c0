// Package newsposts persists news posts through their authoring lifecycle:
// draft -> pending_review -> approved|rejected, then published on demand.
package newsposts

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

const postsCollection = "newsPosts"

// Post statuses.
const (
	StatusDraft         = "draft"
	StatusPendingReview = "pending_review"
	StatusApproved      = "approved"
	StatusRejected      = "rejected"
	StatusPublished     = "published"
)

// Post is a stored news post.
type Post struct {
	ID              string                 `bson:"_id" json:"id"`
	Slug            string                 `bson:"slug" json:"slug"`
	Title           validate.BilingualText `bson:"title" json:"title"`
	Body            validate.BilingualText `bson:"body" json:"body"`
	Status          string                 `bson:"status" json:"status"`
	AuthorUID       string                 `bson:"authorUid" json:"authorUid"`
	AuthorName      string                 `bson:"authorName" json:"authorName"`
	Pinned          bool                   `bson:"pinned" json:"pinned"`
	ViewCount       int64                  `bson:"viewCount" json:"viewCount"`
	RejectionReason string                 `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	ReviewedBy      string                 `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time             `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	PublishedAt     *time.Time             `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	CreatedAt       time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time              `bson:"updatedAt" json:"updatedAt"`
}

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from the English title, suffixed with a short
// random fragment to keep slugs unique without a retry loop.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugCleanRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 60 {
		s = s[:60]
	}
	return s + "-" + uuid.NewString()[:8]
}

// Store handles news post database operations.
type Store struct {
	db *mongo.Database
}

// New creates a news post store.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the slug and status indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "publishedAt", Value: -1}}},
		{Keys: bson.D{{Key: "authorUid", Value: 1}}},
	})
	return err
}

// Create inserts a new draft.
func (s *Store) Create(ctx context.Context, p *Post) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title.EN)
	}
	p.Status = StatusDraft
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.db.Collection(postsCollection).InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Wrap(errs.ErrAlreadyExists, "post with slug %s", p.Slug)
	}
	return err
}

// ByID returns one post.
func (s *Store) ByID(ctx context.Context, id string) (*Post, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// PublishedBySlug returns a published post by slug.
func (s *Store) PublishedBySlug(ctx context.Context, slug string) (*Post, error) {
	return s.findOne(ctx, bson.M{"slug": slug, "status": StatusPublished})
}

// List returns posts, optionally filtered by status and author. Pinned
// posts sort first, then newest.
func (s *Store) List(ctx context.Context, status, authorUID string, limit, offset int) ([]Post, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if authorUID != "" {
		filter["authorUid"] = authorUID
	}
	coll := s.db.Collection(postsCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	cur, err := coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "pinned", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	posts := []Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// UpdateDraft lets the author edit a draft or rejected post. Editing a
// rejected post moves it back to draft so it can be resubmitted.
func (s *Store) UpdateDraft(ctx context.Context, id, authorUID string, title, body validate.BilingualText) (*Post, error) {
	p, err := s.findAndUpdate(ctx,
		bson.M{"_id": id, "authorUid": authorUID, "status": bson.M{"$in": bson.A{StatusDraft, StatusRejected}}},
		bson.M{"$set": bson.M{
			"title":     title,
			"body":      body,
			"status":    StatusDraft,
			"updatedAt": time.Now().UTC(),
		}})
	if errors.Is(err, errs.ErrNotFound) {
		existing, lookupErr := s.findOne(ctx, bson.M{"_id": id, "authorUid": authorUID})
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, errs.Wrap(errs.ErrInvalidStatus,
			"post cannot be edited in status %q", existing.Status)
	}
	return p, err
}

// SubmitForReview moves a draft to pending_review. Only the author may
// submit, and only from draft.
func (s *Store) SubmitForReview(ctx context.Context, id, authorUID string) (*Post, error) {
	p, err := s.findAndUpdate(ctx,
		bson.M{"_id": id, "authorUid": authorUID, "status": StatusDraft},
		bson.M{"$set": bson.M{"status": StatusPendingReview, "updatedAt": time.Now().UTC()}})
	if errors.Is(err, errs.ErrNotFound) {
		existing, lookupErr := s.findOne(ctx, bson.M{"_id": id, "authorUid": authorUID})
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, errs.Wrap(errs.ErrInvalidStatus,
			"post cannot be submitted from status %q", existing.Status)
	}
	return p, err
}

// Review approves or rejects a pending post.
func (s *Store) Review(ctx context.Context, id string, approve bool, reason, reviewerUID string) (*Post, error) {
	now := time.Now().UTC()
	set := bson.M{
		"reviewedBy": reviewerUID,
		"reviewedAt": now,
		"updatedAt":  now,
	}
	if approve {
		set["status"] = StatusApproved
		set["rejectionReason"] = ""
	} else {
		set["status"] = StatusRejected
		set["rejectionReason"] = reason
	}
	p, err := s.findAndUpdate(ctx,
		bson.M{"_id": id, "status": StatusPendingReview},
		bson.M{"$set": set})
	if errors.Is(err, errs.ErrNotFound) {
		existing, lookupErr := s.ByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, errs.Wrap(errs.ErrInvalidStatus,
			"post cannot be reviewed from status %q", existing.Status)
	}
	return p, err
}

// Publish makes an approved post public.
func (s *Store) Publish(ctx context.Context, id string) (*Post, error) {
	now := time.Now().UTC()
	p, err := s.findAndUpdate(ctx,
		bson.M{"_id": id, "status": StatusApproved},
		bson.M{"$set": bson.M{"status": StatusPublished, "publishedAt": now, "updatedAt": now}})
	if errors.Is(err, errs.ErrNotFound) {
		existing, lookupErr := s.ByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, errs.Wrap(errs.ErrInvalidStatus,
			"post cannot be published from status %q", existing.Status)
	}
	return p, err
}

// Unpublish takes a published post back to approved.
func (s *Store) Unpublish(ctx context.Context, id string) (*Post, error) {
	p, err := s.findAndUpdate(ctx,
		bson.M{"_id": id, "status": StatusPublished},
		bson.M{"$set": bson.M{"status": StatusApproved, "updatedAt": time.Now().UTC()}})
	if errors.Is(err, errs.ErrNotFound) {
		existing, lookupErr := s.ByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, errs.Wrap(errs.ErrInvalidStatus,
			"post cannot be unpublished from status %q", existing.Status)
	}
	return p, err
}

// SetPinned toggles the pinned flag.
func (s *Store) SetPinned(ctx context.Context, id string, pinned bool) (*Post, error) {
	return s.findAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"pinned": pinned, "updatedAt": time.Now().UTC()}})
}

// IncrementViews bumps the view counter for a published post and returns
// the post.
func (s *Store) IncrementViews(ctx context.Context, slug string) (*Post, error) {
	var p Post
	err := s.db.Collection(postsCollection).
		FindOneAndUpdate(ctx,
			bson.M{"slug": slug, "status": StatusPublished},
			bson.M{"$inc": bson.M{"viewCount": 1}},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a post.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.Collection(postsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*Post, error) {
	var p Post
	err := s.db.Collection(postsCollection).FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) findAndUpdate(ctx context.Context, filter, update bson.M) (*Post, error) {
	var p Post
	err := s.db.Collection(postsCollection).
		FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
