// Package attendance provides the teacher attendance endpoints, scoped to
// classes the caller is assigned to.
package attendance

import (
	"context"

	"github.com/gsdta/schoolapi/internal/app/store/attendance"
)

// Store is the attendance persistence the handlers need.
type Store interface {
	Create(ctx context.Context, rec *attendance.Record) error
	ByID(ctx context.Context, classID, recordID string) (*attendance.Record, error)
	List(ctx context.Context, classID, startDate, endDate string, limit int) ([]attendance.Record, error)
	UpdateEntries(ctx context.Context, classID, recordID string, entries []attendance.Entry, markedBy, markedName string) (*attendance.Record, error)
}

// ClassStore answers the caller-is-assigned check.
type ClassStore interface {
	IsTeacherAssigned(ctx context.Context, id, teacherUID string) (bool, error)
}

type entryInput struct {
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent late excused"`
	Note      string `json:"note,omitempty" validate:"omitempty,max=500"`
}

type markAttendanceRequest struct {
	Date    string       `json:"date" validate:"required,dateymd"`
	Entries []entryInput `json:"entries" validate:"required,min=1,dive"`
}

type updateAttendanceRequest struct {
	Entries []entryInput `json:"entries" validate:"required,min=1,dive"`
}

type recordResponse struct {
	Record *attendance.Record `json:"record"`
}

type recordListResponse struct {
	Records []attendance.Record `json:"records"`
}
