// Package superadmin provides the super-admin console endpoints: feature
// flags, the audit trail, security events and privileged user management.
package superadmin

import (
	"context"

	"github.com/gsdta/schoolapi/internal/app/store/users"
	"github.com/gsdta/schoolapi/internal/app/system/audit"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
)

// UserStore is the account persistence the handlers need.
type UserStore interface {
	ByUID(ctx context.Context, uid string) (*users.User, error)
	AddRole(ctx context.Context, uid, role string) (*users.User, error)
	RemoveRole(ctx context.Context, uid, role string) (*users.User, error)
	SetStatus(ctx context.Context, uid, status string) (*users.User, error)
	ListByRole(ctx context.Context, role string) ([]users.User, error)
}

// AuditStore is the read side of the audit trail.
type AuditStore interface {
	ListEntries(ctx context.Context, f audit.ListFilter) ([]audit.Entry, int64, error)
	ListSecurityEvents(ctx context.Context, limit, offset int) ([]audit.SecurityEvent, int64, error)
}

type updateFlagsRequest struct {
	Role     string          `json:"role" validate:"required,oneof=admin teacher parent"`
	Features map[string]bool `json:"features" validate:"required,min=1"`
}

type userActionRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type flagsResponse struct {
	Config *flags.Config `json:"config"`
}

type userResponse struct {
	User *users.User `json:"user"`
}

type userListResponse struct {
	Users []users.User `json:"users"`
}

type auditListResponse struct {
	Entries []audit.Entry `json:"entries"`
	Total   int64         `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

type securityListResponse struct {
	Events []audit.SecurityEvent `json:"events"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}
