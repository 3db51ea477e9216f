package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when a user with the email already exists.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateTag is returned when a tag with the name already exists.
	ErrDuplicateTag = errors.New("tag already exists")
)

const uniqueViolationCode = "23505"

// translateUnique maps a Postgres unique-violation error to the sentinel for
// the constraint that fired. Uniqueness is enforced by the database, never by
// application-level pre-checks.
func translateUnique(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolationCode {
		return err
	}

	switch pqErr.Constraint {
	case "users_email_key":
		return ErrDuplicateEmail
	case "users_username_key":
		return ErrDuplicateUsername
	case "tags_name_key":
		return ErrDuplicateTag
	}
	return err
}
