// Package flashnews persists the scrolling news marquee items.
package flashnews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

const flashNewsCollection = "flashNews"

// Item is one marquee entry. StartDate/EndDate are YYYY-MM-DD and bound the
// window in which the item shows publicly.
type Item struct {
	ID        string                 `bson:"_id" json:"id"`
	Text      validate.BilingualText `bson:"text" json:"text"`
	Link      string                 `bson:"link,omitempty" json:"link,omitempty"`
	Active    bool                   `bson:"active" json:"active"`
	StartDate string                 `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   string                 `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Order     int                    `bson:"order" json:"order"`
	CreatedBy string                 `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// UpdateParams holds the optional fields for an item update.
type UpdateParams struct {
	Text      *validate.BilingualText
	Link      *string
	Active    *bool
	StartDate *string
	EndDate   *string
	Order     *int
}

// Store handles flash news database operations.
type Store struct {
	db *mongo.Database
}

// New creates a flash news store.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Create inserts a new item.
func (s *Store) Create(ctx context.Context, it *Item) error {
	now := time.Now().UTC()
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.CreatedAt = now
	it.UpdatedAt = now
	_, err := s.db.Collection(flashNewsCollection).InsertOne(ctx, it)
	return err
}

// ByID returns one item.
func (s *Store) ByID(ctx context.Context, id string) (*Item, error) {
	var it Item
	err := s.db.Collection(flashNewsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// List returns all items in display order.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	cur, err := s.db.Collection(flashNewsCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []Item{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListActive returns items visible on the given date (active flag set and
// the date inside the start/end window when one is set).
func (s *Store) ListActive(ctx context.Context, date string) ([]Item, error) {
	filter := bson.M{
		"active": true,
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"startDate": bson.M{"$exists": false}},
				bson.M{"startDate": ""},
				bson.M{"startDate": bson.M{"$lte": date}},
			}},
			bson.M{"$or": bson.A{
				bson.M{"endDate": bson.M{"$exists": false}},
				bson.M{"endDate": ""},
				bson.M{"endDate": bson.M{"$gte": date}},
			}},
		},
	}
	cur, err := s.db.Collection(flashNewsCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []Item{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies the given fields.
func (s *Store) Update(ctx context.Context, id string, p UpdateParams) (*Item, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Text != nil {
		set["text"] = *p.Text
	}
	if p.Link != nil {
		set["link"] = *p.Link
	}
	if p.Active != nil {
		set["active"] = *p.Active
	}
	if p.StartDate != nil {
		set["startDate"] = *p.StartDate
	}
	if p.EndDate != nil {
		set["endDate"] = *p.EndDate
	}
	if p.Order != nil {
		set["order"] = *p.Order
	}

	var it Item
	err := s.db.Collection(flashNewsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Delete removes an item.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.Collection(flashNewsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}
