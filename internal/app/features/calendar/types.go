// Package calendar provides the admin calendar CRUD endpoints and the
// public calendar feed.
package calendar

import (
	"context"

	"github.com/gsdta/schoolapi/internal/app/store/calendar"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Store is the calendar persistence the handlers need. Implemented by
// store/calendar and by test fakes.
type Store interface {
	Create(ctx context.Context, e *calendar.Event) error
	ByID(ctx context.Context, id string) (*calendar.Event, error)
	List(ctx context.Context, f calendar.ListFilter) ([]calendar.Event, int64, error)
	Update(ctx context.Context, id string, p calendar.UpdateParams) (*calendar.Event, error)
	Delete(ctx context.Context, id string) error
}

type createEventRequest struct {
	Title             validate.BilingualText  `json:"title"`
	Description       *validate.BilingualText `json:"description,omitempty"`
	Date              string                  `json:"date" validate:"required,dateymd"`
	EndDate           string                  `json:"endDate,omitempty" validate:"omitempty,dateymd"`
	AllDay            bool                    `json:"allDay,omitempty"`
	StartTime         string                  `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime           string                  `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	EventType         string                  `json:"eventType" validate:"required,oneof=gsdta holiday test meeting academic sports other"`
	Recurrence        string                  `json:"recurrence,omitempty" validate:"omitempty,oneof=none daily weekly monthly yearly"`
	RecurrenceEndDate string                  `json:"recurrenceEndDate,omitempty" validate:"omitempty,dateymd"`
	Visibility        []string                `json:"visibility,omitempty" validate:"omitempty,dive,oneof=public parent teacher admin"`
	Location          string                  `json:"location,omitempty" validate:"omitempty,max=200"`
}

type updateEventRequest struct {
	Title       *validate.BilingualText `json:"title,omitempty"`
	Description *validate.BilingualText `json:"description,omitempty"`
	Date        *string                 `json:"date,omitempty" validate:"omitempty,dateymd"`
	EndDate     *string                 `json:"endDate,omitempty" validate:"omitempty,dateymd"`
	AllDay      *bool                   `json:"allDay,omitempty"`
	StartTime   *string                 `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime     *string                 `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	EventType   *string                 `json:"eventType,omitempty" validate:"omitempty,oneof=gsdta holiday test meeting academic sports other"`
	Visibility  *[]string               `json:"visibility,omitempty" validate:"omitempty,dive,oneof=public parent teacher admin"`
	Location    *string                 `json:"location,omitempty" validate:"omitempty,max=200"`
	Status      *string                 `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type eventResponse struct {
	Event *calendar.Event `json:"event"`
}

type eventListResponse struct {
	Events []calendar.Event `json:"events"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
