// Package classes provides the admin class management endpoints and the
// teacher's view of their own classes.
package classes

import (
	"context"

	"github.com/gsdta/schoolapi/internal/app/store/classes"
	"github.com/gsdta/schoolapi/internal/app/store/students"
)

// ClassStore is the class persistence the handlers need.
type ClassStore interface {
	Create(ctx context.Context, p classes.CreateParams) (*classes.Class, error)
	ByID(ctx context.Context, id string) (*classes.Class, error)
	List(ctx context.Context, status string, limit, offset int) ([]classes.Class, int64, error)
	ListByTeacher(ctx context.Context, teacherUID string) ([]classes.Class, error)
	Update(ctx context.Context, id string, p classes.UpdateParams) (*classes.Class, error)
	ReserveSeats(ctx context.Context, id string, n int) (*classes.Class, error)
	ReleaseSeat(ctx context.Context, id string) error
	AssignTeacher(ctx context.Context, id string, t classes.Teacher) (*classes.Class, error)
	IsTeacherAssigned(ctx context.Context, id, teacherUID string) (bool, error)
}

// StudentStore is the slice of student persistence class assignment needs.
type StudentStore interface {
	AssignClass(ctx context.Context, id, classID, className string) (*students.Student, error)
	ByClass(ctx context.Context, classID string) ([]students.Student, error)
}

// UserStore resolves teacher profiles for assignment.
type UserStore interface {
	DisplayNameByUID(ctx context.Context, uid string) (string, error)
}

type createClassRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	GradeID  string `json:"gradeId" validate:"required,max=50"`
	Schedule string `json:"schedule,omitempty" validate:"omitempty,max=200"`
	Capacity int    `json:"capacity" validate:"required,min=1,max=100"`
}

type updateClassRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Schedule *string `json:"schedule,omitempty" validate:"omitempty,max=200"`
	Capacity *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=100"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type assignStudentsRequest struct {
	StudentIDs []string `json:"studentIds" validate:"required,min=1,dive,required"`
}

type assignTeacherRequest struct {
	TeacherUID string `json:"teacherUid" validate:"required"`
	Role       string `json:"role,omitempty" validate:"omitempty,oneof=primary assistant"`
}

type classResponse struct {
	Class *classes.Class `json:"class"`
}

type classListResponse struct {
	Classes []classes.Class `json:"classes"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type assignResult struct {
	StudentID string `json:"studentId"`
	Assigned  bool   `json:"assigned"`
	Error     string `json:"error,omitempty"`
}

type assignStudentsResponse struct {
	Class    *classes.Class `json:"class"`
	Results  []assignResult `json:"results"`
	Assigned int            `json:"assigned"`
	Failed   int            `json:"failed"`
}

type rosterResponse struct {
	Class    *classes.Class     `json:"class"`
	Students []students.Student `json:"students"`
}
