package model

import "time"

// User is a registered account with optional search preferences.
// PasswordHash and the reset-token pair never leave the server; the
// json tags drop them from API responses.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`

	PasswordHash string `json:"-"`

	Preferences PreferenceProfile `json:"preferences"`

	ResetToken        string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
