package types

import "time"

// User represents an account in the system.
// Accounts are created either on first successful Google sign-in or
// through the deprecated local registration path.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique display name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the externally verified address. It is nil for accounts
	// created through local registration.
	Email *string `json:"email,omitempty" db:"email"`

	// PasswordHash stores the bcrypt hash for local accounts.
	// This field is never exposed in API responses.
	PasswordHash *string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
