package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role in the campus hub.
type Role string

const (
	RoleStudent   Role = "student"
	RoleClubStaff Role = "club_staff"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleClubStaff, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user resolved from the campus identity provider.
// ClubID is set only for club_staff; every role-changing write must clear it
// when the new role is not club_staff.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        Role       `json:"role"`
	ClubID      *uuid.UUID `json:"club_id,omitempty"`
	Password    string     `json:"-"` // bcrypt hash; only set for local bootstrap accounts
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        Role       `json:"role"`
	ClubID      *uuid.UUID `json:"club_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		ClubID:      u.ClubID,
		CreatedAt:   u.CreatedAt,
	}
}
