// Package attendance persists per-class, per-date attendance records.
package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
)

const attendanceCollection = "attendanceRecords"

// Entry statuses.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

// Entry is one student's mark within a record.
type Entry struct {
	StudentID string `bson:"studentId" json:"studentId"`
	Status    string `bson:"status" json:"status"`
	Note      string `bson:"note,omitempty" json:"note,omitempty"`
}

// Record is the attendance sheet for one class on one date.
type Record struct {
	ID         string    `bson:"_id" json:"id"`
	ClassID    string    `bson:"classId" json:"classId"`
	Date       string    `bson:"date" json:"date"` // YYYY-MM-DD
	Entries    []Entry   `bson:"entries" json:"entries"`
	MarkedBy   string    `bson:"markedBy" json:"markedBy"`
	MarkedName string    `bson:"markedName,omitempty" json:"markedName,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Store handles attendance database operations.
type Store struct {
	db *mongo.Database
}

// New creates an attendance store.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the unique class+date index that backs the
// one-record-per-day rule.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(attendanceCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "classId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create inserts a record. A second record for the same class and date is
// rejected with ErrAlreadyExists.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	_, err := s.db.Collection(attendanceCollection).InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Wrap(errs.ErrAlreadyExists, "attendance for %s on %s", rec.ClassID, rec.Date)
	}
	return err
}

// ByID returns one record scoped to a class.
func (s *Store) ByID(ctx context.Context, classID, recordID string) (*Record, error) {
	var rec Record
	err := s.db.Collection(attendanceCollection).
		FindOne(ctx, bson.M{"_id": recordID, "classId": classID}).
		Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the class's records in a date range, newest first.
func (s *Store) List(ctx context.Context, classID, startDate, endDate string, limit int) ([]Record, error) {
	filter := bson.M{"classId": classID}
	if startDate != "" || endDate != "" {
		df := bson.M{}
		if startDate != "" {
			df["$gte"] = startDate
		}
		if endDate != "" {
			df["$lte"] = endDate
		}
		filter["date"] = df
	}
	if limit <= 0 {
		limit = 100
	}
	cur, err := s.db.Collection(attendanceCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	records := []Record{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateEntries replaces the entries of an existing record.
func (s *Store) UpdateEntries(ctx context.Context, classID, recordID string, entries []Entry, markedBy, markedName string) (*Record, error) {
	var rec Record
	err := s.db.Collection(attendanceCollection).
		FindOneAndUpdate(ctx,
			bson.M{"_id": recordID, "classId": classID},
			bson.M{"$set": bson.M{
				"entries":    entries,
				"markedBy":   markedBy,
				"markedName": markedName,
				"updatedAt":  time.Now().UTC(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
