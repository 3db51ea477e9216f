package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/intervault/apiserver/internal/store"
	"github.com/intervault/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordRequired is returned when local registration omits a password.
var ErrPasswordRequired = errors.New("password is required")

// IdentityVerifier validates an external identity assertion and returns the
// verified email it attests to.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (string, error)
}

// TokenIssuer mints session credentials for authenticated users.
type TokenIssuer interface {
	Issue(userID int) (string, error)
}

// LoginResult is the outcome of a Google login attempt.
//
// RegistrationRequired marks the terminal per-request state where the email
// is verified but unknown and no display name was supplied; the client must
// resubmit with a name. No user row exists in that case.
type LoginResult struct {
	RegistrationRequired bool
	AccessToken          string
	Username             string
	UserID               int
	IsNew                bool
}

// AuthService implements the login flow: verify the identity assertion,
// resolve or create the directory entry, and issue a session credential.
type AuthService struct {
	users    UserRepository
	verifier IdentityVerifier
	tokens   TokenIssuer
}

func NewAuthService(users UserRepository, verifier IdentityVerifier, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:    users,
		verifier: verifier,
		tokens:   tokens,
	}
}

// GoogleLogin verifies the assertion and resolves the verified email to a
// user. Unknown email with a supplied name creates the user; without a name
// it returns a registration-required result and creates nothing.
func (s *AuthService) GoogleLogin(ctx context.Context, assertion, name string) (LoginResult, error) {
	email, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	isNew := false
	switch {
	case err == nil:
		// Returning user. The stored username wins over any name in
		// the request.
	case errors.Is(err, store.ErrNotFound):
		name = strings.TrimSpace(name)
		if name == "" {
			return LoginResult{RegistrationRequired: true}, nil
		}
		user, err = s.createUser(ctx, email, name)
		if err != nil {
			return LoginResult{}, err
		}
		isNew = true
	default:
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	return LoginResult{
		AccessToken: token,
		Username:    user.Username,
		UserID:      user.ID,
		IsNew:       isNew,
	}, nil
}

// createUser inserts the directory entry. A duplicate-email collision means
// a concurrent request created the row first; re-read it and treat the
// caller as a returning user. Duplicate usernames surface to the caller.
func (s *AuthService) createUser(ctx context.Context, email, name string) (types.User, error) {
	user, err := s.users.Create(ctx, types.User{Username: name, Email: &email})
	if err == nil {
		return user, nil
	}
	if errors.Is(err, store.ErrDuplicateEmail) {
		return s.users.GetByEmail(ctx, email)
	}
	return types.User{}, err
}

// RegisterLocal creates an account with a username and bcrypt password hash.
// Deprecated signup path kept for existing clients; it issues no credential.
func (s *AuthService) RegisterLocal(ctx context.Context, username, password string) (types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return types.User{}, ErrUsernameRequired
	}
	if password == "" {
		return types.User{}, ErrPasswordRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	hash := string(hashed)
	return s.users.Create(ctx, types.User{Username: username, PasswordHash: &hash})
}
