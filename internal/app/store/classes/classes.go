// Package classes persists class records, their rosters' enrollment counts
// and teacher assignments.
package classes

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

const classesCollection = "classes"

// Teacher is one teacher assigned to a class.
type Teacher struct {
	UID        string    `bson:"uid" json:"uid"`
	Name       string    `bson:"name" json:"name"`
	Role       string    `bson:"role" json:"role"` // primary or assistant
	AssignedAt time.Time `bson:"assignedAt" json:"assignedAt"`
}

// Class is a stored class.
type Class struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	GradeID   string    `bson:"gradeId" json:"gradeId"`
	Schedule  string    `bson:"schedule,omitempty" json:"schedule,omitempty"`
	Capacity  int       `bson:"capacity" json:"capacity"`
	Enrolled  int       `bson:"enrolled" json:"enrolled"`
	Status    string    `bson:"status" json:"status"` // active or inactive
	Teachers  []Teacher `bson:"teachers,omitempty" json:"teachers,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Available returns the remaining seats.
func (c *Class) Available() int { return c.Capacity - c.Enrolled }

// CreateParams holds the fields for a new class.
type CreateParams struct {
	Name     string
	GradeID  string
	Schedule string
	Capacity int
}

// UpdateParams holds the optional fields for a class update.
type UpdateParams struct {
	Name     *string
	Schedule *string
	Capacity *int
	Status   *string
}

// Store handles class database operations.
type Store struct {
	db *mongo.Database
}

// New creates a class store.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Create inserts a new class with an empty roster.
func (s *Store) Create(ctx context.Context, p CreateParams) (*Class, error) {
	now := time.Now().UTC()
	c := &Class{
		ID:        uuid.NewString(),
		Name:      p.Name,
		GradeID:   p.GradeID,
		Schedule:  p.Schedule,
		Capacity:  p.Capacity,
		Enrolled:  0,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.Collection(classesCollection).InsertOne(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ByID returns one class.
func (s *Store) ByID(ctx context.Context, id string) (*Class, error) {
	var c Class
	err := s.db.Collection(classesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns classes, optionally filtered by status, name order.
func (s *Store) List(ctx context.Context, status string, limit, offset int) ([]Class, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	coll := s.db.Collection(classesCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 100
	}
	cur, err := coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []Class{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByTeacher returns classes the teacher is assigned to.
func (s *Store) ListByTeacher(ctx context.Context, teacherUID string) ([]Class, error) {
	cur, err := s.db.Collection(classesCollection).Find(ctx,
		bson.M{"teachers.uid": teacherUID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Class{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the given fields.
func (s *Store) Update(ctx context.Context, id string, p UpdateParams) (*Class, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Schedule != nil {
		set["schedule"] = *p.Schedule
	}
	if p.Capacity != nil {
		set["capacity"] = *p.Capacity
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}

	var c Class
	err := s.db.Collection(classesCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ReserveSeats atomically bumps the enrolled count by n, failing when the
// class would exceed capacity. The capacity check and the increment are one
// conditional update so concurrent admissions cannot lose updates.
func (s *Store) ReserveSeats(ctx context.Context, id string, n int) (*Class, error) {
	filter := bson.M{
		"_id": id,
		"$expr": bson.M{
			"$lte": bson.A{bson.M{"$add": bson.A{"$enrolled", n}}, "$capacity"},
		},
	}
	update := bson.M{
		"$inc": bson.M{"enrolled": n},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	var c Class
	err := s.db.Collection(classesCollection).
		FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the class is missing or the seats don't fit; look again to
		// tell the two apart.
		existing, lookupErr := s.ByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, errs.Wrap(errs.ErrCapacityExceeded,
			"cannot assign %d student(s), only %d spot(s) available", n, existing.Available())
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ReleaseSeat decrements the enrolled count, never below zero.
func (s *Store) ReleaseSeat(ctx context.Context, id string) error {
	res, err := s.db.Collection(classesCollection).UpdateOne(ctx,
		bson.M{"_id": id, "enrolled": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"enrolled": -1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.ByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AssignTeacher adds a teacher to the class roster. Assigning the same
// teacher twice is rejected.
func (s *Store) AssignTeacher(ctx context.Context, id string, t Teacher) (*Class, error) {
	t.AssignedAt = time.Now().UTC()
	var c Class
	err := s.db.Collection(classesCollection).
		FindOneAndUpdate(ctx,
			bson.M{"_id": id, "teachers.uid": bson.M{"$ne": t.UID}},
			bson.M{
				"$push": bson.M{"teachers": t},
				"$set":  bson.M{"updatedAt": time.Now().UTC()},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, lookupErr := s.ByID(ctx, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, errs.Wrap(errs.ErrAlreadyExists, "teacher is already assigned to this class")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// IsTeacherAssigned reports whether the teacher is on the class roster.
func (s *Store) IsTeacherAssigned(ctx context.Context, id, teacherUID string) (bool, error) {
	err := s.db.Collection(classesCollection).
		FindOne(ctx, bson.M{"_id": id, "teachers.uid": teacherUID},
			options.FindOne().SetProjection(bson.M{"_id": 1})).
		Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
