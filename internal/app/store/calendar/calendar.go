// Package calendar persists school calendar events.
package calendar

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

const eventsCollection = "calendarEvents"

// Event is a stored calendar event. Dates are YYYY-MM-DD strings and times
// HH:MM, matching the wire format.
type Event struct {
	ID                string                  `bson:"_id" json:"id"`
	Title             validate.BilingualText  `bson:"title" json:"title"`
	Description       *validate.BilingualText `bson:"description,omitempty" json:"description,omitempty"`
	Date              string                  `bson:"date" json:"date"`
	EndDate           string                  `bson:"endDate,omitempty" json:"endDate,omitempty"`
	AllDay            bool                    `bson:"allDay" json:"allDay"`
	StartTime         string                  `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime           string                  `bson:"endTime,omitempty" json:"endTime,omitempty"`
	EventType         string                  `bson:"eventType" json:"eventType"`
	Recurrence        string                  `bson:"recurrence,omitempty" json:"recurrence,omitempty"`
	RecurrenceEndDate string                  `bson:"recurrenceEndDate,omitempty" json:"recurrenceEndDate,omitempty"`
	Visibility        []string                `bson:"visibility,omitempty" json:"visibility,omitempty"`
	Location          string                  `bson:"location,omitempty" json:"location,omitempty"`
	Status            string                  `bson:"status" json:"status"`
	CreatedBy         string                  `bson:"createdBy" json:"createdBy"`
	CreatedByName     string                  `bson:"createdByName,omitempty" json:"createdByName,omitempty"`
	CreatedAt         time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time               `bson:"updatedAt" json:"updatedAt"`
}

// ListFilter narrows event queries.
type ListFilter struct {
	StartDate  string
	EndDate    string
	EventType  string
	Status     string
	Visibility string
	Limit      int
	Offset     int
}

// Store handles calendar database operations.
type Store struct {
	db *mongo.Database
}

// New creates a calendar store.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Create inserts a new event.
func (s *Store) Create(ctx context.Context, e *Event) error {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = "active"
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	_, err := s.db.Collection(eventsCollection).InsertOne(ctx, e)
	return err
}

// ByID returns one event.
func (s *Store) ByID(ctx context.Context, id string) (*Event, error) {
	var e Event
	err := s.db.Collection(eventsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns events matching the filter, ordered by date, plus the total
// match count. YYYY-MM-DD strings compare correctly lexicographically.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Event, int64, error) {
	filter := bson.M{}
	if f.StartDate != "" || f.EndDate != "" {
		dateFilter := bson.M{}
		if f.StartDate != "" {
			dateFilter["$gte"] = f.StartDate
		}
		if f.EndDate != "" {
			dateFilter["$lte"] = f.EndDate
		}
		filter["date"] = dateFilter
	}
	if f.EventType != "" {
		filter["eventType"] = f.EventType
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Visibility != "" {
		filter["visibility"] = f.Visibility
	}

	coll := s.db.Collection(eventsCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	cur, err := coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateParams holds the optional fields for an event update.
type UpdateParams struct {
	Title       *validate.BilingualText
	Description *validate.BilingualText
	Date        *string
	EndDate     *string
	AllDay      *bool
	StartTime   *string
	EndTime     *string
	EventType   *string
	Visibility  *[]string
	Location    *string
	Status      *string
}

// Update applies the given fields to an event.
func (s *Store) Update(ctx context.Context, id string, p UpdateParams) (*Event, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}
	if p.EndDate != nil {
		set["endDate"] = *p.EndDate
	}
	if p.AllDay != nil {
		set["allDay"] = *p.AllDay
	}
	if p.StartTime != nil {
		set["startTime"] = *p.StartTime
	}
	if p.EndTime != nil {
		set["endTime"] = *p.EndTime
	}
	if p.EventType != nil {
		set["eventType"] = *p.EventType
	}
	if p.Visibility != nil {
		set["visibility"] = *p.Visibility
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	var e Event
	err := s.db.Collection(eventsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes an event.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.Collection(eventsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}
