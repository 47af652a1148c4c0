// Package flashnews provides the admin marquee management endpoints and the
// public marquee feed.
package flashnews

import (
	"context"

	"github.com/gsdta/schoolapi/internal/app/store/flashnews"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Store is the flash news persistence the handlers need.
type Store interface {
	Create(ctx context.Context, it *flashnews.Item) error
	ByID(ctx context.Context, id string) (*flashnews.Item, error)
	List(ctx context.Context) ([]flashnews.Item, error)
	ListActive(ctx context.Context, date string) ([]flashnews.Item, error)
	Update(ctx context.Context, id string, p flashnews.UpdateParams) (*flashnews.Item, error)
	Delete(ctx context.Context, id string) error
}

type createItemRequest struct {
	Text      validate.BilingualText `json:"text"`
	Link      string                 `json:"link,omitempty" validate:"omitempty,url,max=500"`
	Active    bool                   `json:"active"`
	StartDate string                 `json:"startDate,omitempty" validate:"omitempty,dateymd"`
	EndDate   string                 `json:"endDate,omitempty" validate:"omitempty,dateymd"`
	Order     int                    `json:"order,omitempty" validate:"omitempty,min=0"`
}

type updateItemRequest struct {
	Text      *validate.BilingualText `json:"text,omitempty"`
	Link      *string                 `json:"link,omitempty" validate:"omitempty,url,max=500"`
	Active    *bool                   `json:"active,omitempty"`
	StartDate *string                 `json:"startDate,omitempty" validate:"omitempty,dateymd"`
	EndDate   *string                 `json:"endDate,omitempty" validate:"omitempty,dateymd"`
	Order     *int                    `json:"order,omitempty" validate:"omitempty,min=0"`
}

type itemResponse struct {
	Item *flashnews.Item `json:"item"`
}

type itemListResponse struct {
	Items []flashnews.Item `json:"items"`
}

// publicItem is a marquee entry resolved to one language for display.
type publicItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

type publicListResponse struct {
	Items []publicItem `json:"items"`
	Lang  string       `json:"lang"`
}
