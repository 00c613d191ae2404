package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// RoleAdmin is the role title that grants admin rights on creation.
	RoleAdmin = "Admin"

	DefaultProfilePicture = "https://cdn-icons-png.flaticon.com/512/149/149071.png"
)

type User struct {
	ID                  uuid.UUID
	FirstName           string
	LastName            string
	Email               string
	PhoneNumber         string
	PasswordHash        string
	Role                string
	ProfilePicture      string
	IsAdmin             bool
	IsTemporaryPassword bool
	FailedLoginAttempts int
	LockUntil           *time.Time
	PasswordChangedAt   *time.Time
	Projects            []uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsLocked reports whether the lockout window is still open at now.
func (u *User) IsLocked(now time.Time, threshold int) bool {
	return u.FailedLoginAttempts >= threshold && u.LockUntil != nil && now.Before(*u.LockUntil)
}

// UserPatch lists the profile fields a client may change.
type UserPatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	PhoneNumber    *string
	Role           *string
	ProfilePicture *string
	Password       *string
}

// ListUsersParams holds pagination for the admin user listing.
type ListUsersParams struct {
	StartIndex int
	Limit      int
	SortAsc    bool
}

// UserListResult is one page of users with totals.
type UserListResult struct {
	Users          []*User
	TotalUsers     int
	LastMonthUsers int
}

// UserDetail is a user together with summaries of their projects.
type UserDetail struct {
	User     *User
	Projects []*ProjectSummary
}
