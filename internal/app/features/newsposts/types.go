// Package newsposts provides teacher authoring, admin review and the public
// feed for news posts.
package newsposts

import (
	"context"

	"github.com/gsdta/schoolapi/internal/app/store/newsposts"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Store is the news post persistence the handlers need.
type Store interface {
	Create(ctx context.Context, p *newsposts.Post) error
	ByID(ctx context.Context, id string) (*newsposts.Post, error)
	List(ctx context.Context, status, authorUID string, limit, offset int) ([]newsposts.Post, int64, error)
	UpdateDraft(ctx context.Context, id, authorUID string, title, body validate.BilingualText) (*newsposts.Post, error)
	SubmitForReview(ctx context.Context, id, authorUID string) (*newsposts.Post, error)
	Review(ctx context.Context, id string, approve bool, reason, reviewerUID string) (*newsposts.Post, error)
	Publish(ctx context.Context, id string) (*newsposts.Post, error)
	Unpublish(ctx context.Context, id string) (*newsposts.Post, error)
	SetPinned(ctx context.Context, id string, pinned bool) (*newsposts.Post, error)
	IncrementViews(ctx context.Context, slug string) (*newsposts.Post, error)
	Delete(ctx context.Context, id string) error
}

type createPostRequest struct {
	Title validate.BilingualText `json:"title"`
	Body  validate.BilingualText `json:"body"`
}

type reviewPostRequest struct {
	Action          string `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason string `json:"rejectionReason,omitempty" validate:"required_if=Action reject,omitempty,max=500"`
}

type pinPostRequest struct {
	Pinned bool `json:"pinned"`
}

type postResponse struct {
	Post *newsposts.Post `json:"post"`
}

type postListResponse struct {
	Posts  []newsposts.Post `json:"posts"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
