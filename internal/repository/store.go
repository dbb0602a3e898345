package repository

import (
	"context"
	"time"

	"github.com/iliyamo/publicvoice/internal/model"
)

// UserStore persists identities.
type UserStore interface {
	// Create inserts u and fills ID and timestamps.  Duplicate emails yield ErrEmailExists.
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateProfile replaces the full name and profile image of a user.
	UpdateProfile(ctx context.Context, id uint64, fullName string, profileImage *string) error
	// SetResetToken stores a reset token digest and its expiry, replacing any previous one.
	SetResetToken(ctx context.Context, id uint64, tokenHash string, expiresAt time.Time) error
	// ConsumeResetToken atomically swaps the password hash and clears the token.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (uint64, error)
	List(ctx context.Context, q UserQuery) ([]*model.User, error)
}

// ReportStore persists reports.
type ReportStore interface {
	// Create inserts r and fills ID and timestamps.
	Create(ctx context.Context, r *model.Report) error
	GetByID(ctx context.Context, id uint64) (*model.Report, error)
	List(ctx context.Context, q ReportQuery) ([]*model.Report, error)
	// Update applies the non-nil fields of p under a row lock and returns the new row.
	Update(ctx context.Context, id uint64, p ReportPatch) (*model.Report, error)
	CountByStatus(ctx context.Context) (map[model.Status]int64, error)
}

// UserQuery selects users for listing.  Role, when set, restricts the list
// to that role; otherwise admins are excluded unless IncludeAdmin is set.
type UserQuery struct {
	Role         model.Role
	IncludeAdmin bool
	Offset       int
	Limit        int
}

// ReportQuery selects reports for listing, newest first.
type ReportQuery struct {
	OwnerID  *uint64
	Status   *model.Status
	Category *string
	Offset   int
	Limit    int
}

// ReportPatch lists the admin-editable report fields.  Nil means unchanged.
type ReportPatch struct {
	Status        *model.Status
	AdminResponse *string
}

var (
	_ UserStore   = (*UserRepo)(nil)
	_ ReportStore = (*ReportRepo)(nil)
)
