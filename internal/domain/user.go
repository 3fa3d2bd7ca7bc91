package domain

import "time"

// User role constants.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. Admins are users with RoleAdmin.
type User struct {
	ID           string     `json:"id"`
	Fullname     string     `json:"fullname"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Contact      string     `json:"contact,omitempty"`
	Role         string     `json:"role"`
	OTPHash      string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserSummary is the subset of user fields attached to admin order listings.
type UserSummary struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Contact  string `json:"contact,omitempty"`
}

// Summary returns the public projection of the user.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		Fullname: u.Fullname,
		Email:    u.Email,
		Contact:  u.Contact,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
