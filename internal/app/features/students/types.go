// Package students provides the admin student management endpoints and the
// parent portal's view of their own children.
package students

import (
	"context"

	"github.com/gsdta/schoolapi/internal/app/store/students"
)

// Store is the student persistence the handlers need.
type Store interface {
	Create(ctx context.Context, st *students.Student) error
	ByID(ctx context.Context, id string) (*students.Student, error)
	ByIDForParent(ctx context.Context, id, parentUID string) (*students.Student, error)
	ByParent(ctx context.Context, parentUID string) ([]students.Student, error)
	List(ctx context.Context, f students.ListFilter) ([]students.Student, int64, error)
	Update(ctx context.Context, id string, p students.UpdateParams) (*students.Student, error)
	Admit(ctx context.Context, id string) (*students.Student, error)
	UnassignClass(ctx context.Context, id string) (*students.Student, error)
}

// ClassStore releases a seat when a student leaves their class.
type ClassStore interface {
	ReleaseSeat(ctx context.Context, id string) error
}

type registerStudentRequest struct {
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,dateymd"`
	GradeID     string `json:"gradeId,omitempty" validate:"omitempty,max=50"`
	Notes       string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type createStudentRequest struct {
	registerStudentRequest
	ParentID string `json:"parentId" validate:"required"`
}

type updateStudentRequest struct {
	FirstName   *string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName    *string `json:"lastName,omitempty" validate:"omitempty,max=100"`
	DateOfBirth *string `json:"dateOfBirth,omitempty" validate:"omitempty,dateymd"`
	GradeID     *string `json:"gradeId,omitempty" validate:"omitempty,max=50"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending admitted active inactive"`
}

type studentResponse struct {
	Student *students.Student `json:"student"`
}

type studentListResponse struct {
	Students []students.Student `json:"students"`
	Total    int64              `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}
