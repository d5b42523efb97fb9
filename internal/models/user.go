package models

import "time"

// User represents a platform member.
type User struct {
	ID           int64      `json:"id" db:"id"`
	FirstName    string     `json:"firstName" db:"first_name"`
	LastName     string     `json:"lastName" db:"last_name"`
	Email        string     `json:"email" db:"email"`
	Password     string     `json:"-" db:"password_hash"` // Never expose in JSON
	Avatar       *string    `json:"avatar,omitempty" db:"avatar"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty" db:"last_active_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// UserResponse is what we send to clients (without sensitive data)
type UserResponse struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}

// FullName joins first and last name the way the UI displays users.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.FullName(),
		Email:     u.Email,
		Avatar:    u.Avatar,
	}
}
