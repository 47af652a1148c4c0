// Package students persists student records and their class assignments.
package students

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

const studentsCollection = "students"

// Student statuses. Admission moves pending to admitted; admitted students
// become active once assigned to a class for the school year.
const (
	StatusPending  = "pending"
	StatusAdmitted = "admitted"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Student is a stored student record.
type Student struct {
	ID          string    `bson:"_id" json:"id"`
	FirstName   string    `bson:"firstName" json:"firstName"`
	LastName    string    `bson:"lastName" json:"lastName"`
	DateOfBirth string    `bson:"dateOfBirth" json:"dateOfBirth"`
	ParentID    string    `bson:"parentId" json:"parentId"`
	Status      string    `bson:"status" json:"status"`
	ClassID     string    `bson:"classId,omitempty" json:"classId,omitempty"`
	ClassName   string    `bson:"className,omitempty" json:"className,omitempty"`
	GradeID     string    `bson:"gradeId,omitempty" json:"gradeId,omitempty"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ListFilter narrows admin student listings.
type ListFilter struct {
	Status  string
	ClassID string
	Limit   int
	Offset  int
}

// UpdateParams holds the optional fields for an admin student update.
type UpdateParams struct {
	FirstName   *string
	LastName    *string
	DateOfBirth *string
	GradeID     *string
	Notes       *string
	Status      *string
}

// Store handles student database operations.
type Store struct {
	db *mongo.Database
}

// New creates a student store.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(studentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parentId", Value: 1}}},
		{Keys: bson.D{{Key: "classId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

// Create inserts a new student in pending status.
func (s *Store) Create(ctx context.Context, st *Student) error {
	now := time.Now().UTC()
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.Status == "" {
		st.Status = StatusPending
	}
	st.CreatedAt = now
	st.UpdatedAt = now
	_, err := s.db.Collection(studentsCollection).InsertOne(ctx, st)
	return err
}

// ByID returns one student.
func (s *Store) ByID(ctx context.Context, id string) (*Student, error) {
	var st Student
	err := s.db.Collection(studentsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ByIDForParent returns the student only when owned by the parent.
// A student owned by someone else comes back as ErrNotFound so the route
// does not leak existence.
func (s *Store) ByIDForParent(ctx context.Context, id, parentUID string) (*Student, error) {
	var st Student
	err := s.db.Collection(studentsCollection).
		FindOne(ctx, bson.M{"_id": id, "parentId": parentUID}).
		Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ByParent returns all students linked to the parent.
func (s *Store) ByParent(ctx context.Context, parentUID string) ([]Student, error) {
	cur, err := s.db.Collection(studentsCollection).Find(ctx,
		bson.M{"parentId": parentUID},
		options.Find().SetSort(bson.D{{Key: "firstName", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Student{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns students matching the filter plus the total match count.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Student, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ClassID != "" {
		filter["classId"] = f.ClassID
	}
	coll := s.db.Collection(studentsCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	cur, err := coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []Student{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update applies admin edits.
func (s *Store) Update(ctx context.Context, id string, p UpdateParams) (*Student, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.FirstName != nil {
		set["firstName"] = *p.FirstName
	}
	if p.LastName != nil {
		set["lastName"] = *p.LastName
	}
	if p.DateOfBirth != nil {
		set["dateOfBirth"] = *p.DateOfBirth
	}
	if p.GradeID != nil {
		set["gradeId"] = *p.GradeID
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return s.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

// Admit moves a pending student to admitted. Any other starting status is
// rejected.
func (s *Store) Admit(ctx context.Context, id string) (*Student, error) {
	st, err := s.findAndUpdate(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{"$set": bson.M{"status": StatusAdmitted, "updatedAt": time.Now().UTC()}})
	if errors.Is(err, errs.ErrNotFound) {
		existing, lookupErr := s.ByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, errs.Wrap(errs.ErrInvalidStatus,
			"student cannot be admitted from status %q", existing.Status)
	}
	return st, err
}

// AssignClass places an admitted or active student into a class and marks
// them active. The caller reserves the class seat first.
func (s *Store) AssignClass(ctx context.Context, id, classID, className string) (*Student, error) {
	st, err := s.findAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{StatusAdmitted, StatusActive}}},
		bson.M{"$set": bson.M{
			"classId":   classID,
			"className": className,
			"status":    StatusActive,
			"updatedAt": time.Now().UTC(),
		}})
	if errors.Is(err, errs.ErrNotFound) {
		existing, lookupErr := s.ByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, errs.Wrap(errs.ErrInvalidStatus,
			"student with status %q cannot be assigned to a class", existing.Status)
	}
	return st, err
}

// UnassignClass removes the student's class link.
func (s *Store) UnassignClass(ctx context.Context, id string) (*Student, error) {
	return s.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"classId": "", "className": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
}

// ByClass returns the roster for a class.
func (s *Store) ByClass(ctx context.Context, classID string) ([]Student, error) {
	cur, err := s.db.Collection(studentsCollection).Find(ctx,
		bson.M{"classId": classID},
		options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Student{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) findAndUpdate(ctx context.Context, filter, update bson.M) (*Student, error) {
	var st Student
	err := s.db.Collection(studentsCollection).
		FindOneAndUpdate(ctx, filter, update,
			options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}
