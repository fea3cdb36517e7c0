package schema

import "time"

////////////////////////////////////////////////////////////////////////////////
// TYPES

// User is an authenticated account on the generation service.
type User struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name,omitempty"`
	Created time.Time `json:"created_at,omitzero"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// TokenResponse carries a freshly minted bearer credential. The refresh
// secret never appears here; it travels in an HttpOnly cookie managed by
// the transport.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user,omitempty"`
}

// Settings are the per-user generation preferences, read and updated
// via GET/PATCH /auth/settings.
type Settings struct {
	Language   string `json:"language,omitempty" yaml:"language,omitempty"`
	GradeLevel string `json:"grade_level,omitempty" yaml:"grade_level,omitempty"`
	Subject    string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (u User) String() string {
	return Stringify(u)
}

func (s Settings) String() string {
	return Stringify(s)
}
