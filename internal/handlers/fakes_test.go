package handlers

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/intervault/apiserver/internal/auth"
	"github.com/intervault/apiserver/internal/services"
	"github.com/intervault/apiserver/internal/store"
	"github.com/intervault/apiserver/types"
)

// In-memory repositories mirroring the Postgres behavior the handlers rely
// on: unique constraints, owner scoping, case-insensitive substring search.

type memUserRepo struct {
	nextID int
	users  map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int]types.User{}}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email != nil && *user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrDuplicateUsername
		}
		if existing.Email != nil && user.Email != nil && *existing.Email == *user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) UpdateUsername(_ context.Context, id int, username string) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	for _, existing := range r.users {
		if existing.ID != id && existing.Username == username {
			return store.ErrDuplicateUsername
		}
	}
	user.Username = username
	r.users[id] = user
	return nil
}

type memVaultRepo struct {
	nextID  int
	entries []types.VaultEntry
}

func (r *memVaultRepo) Create(_ context.Context, entry types.VaultEntry, tagIDs []int) (int, error) {
	r.nextID++
	entry.ID = r.nextID
	entry.Tags = make([]types.Tag, 0)
	for _, tagID := range tagIDs {
		entry.Tags = append(entry.Tags, types.Tag{ID: tagID})
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return entry.ID, nil
}

func (r *memVaultRepo) Search(_ context.Context, ownerID int, query string) ([]types.VaultEntry, error) {
	needle := strings.ToLower(query)
	matches := make([]types.VaultEntry, 0)
	for _, entry := range r.entries {
		if entry.OwnerID != ownerID {
			continue
		}
		if strings.Contains(strings.ToLower(entry.Question), needle) ||
			strings.Contains(strings.ToLower(entry.Metadata.Answer), needle) {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

func (r *memVaultRepo) List(_ context.Context, ownerID, offset, limit int) ([]types.VaultEntry, int, error) {
	owned := make([]types.VaultEntry, 0)
	for _, entry := range r.entries {
		if entry.OwnerID == ownerID {
			owned = append(owned, entry)
		}
	}
	total := len(owned)
	if offset >= total {
		return []types.VaultEntry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

type memTagRepo struct {
	nextID int
	tags   []types.Tag
}

func (r *memTagRepo) Create(_ context.Context, name, tagType string) (types.Tag, error) {
	for _, tag := range r.tags {
		if tag.Name == name {
			return types.Tag{}, store.ErrDuplicateTag
		}
	}
	r.nextID++
	tag := types.Tag{ID: r.nextID, Name: name, Type: tagType}
	r.tags = append(r.tags, tag)
	return tag, nil
}

func (r *memTagRepo) List(_ context.Context) ([]types.Tag, error) {
	return append([]types.Tag{}, r.tags...), nil
}

// stubVerifier treats the assertion string as a lookup key into a fixed set
// of verified emails.
type stubVerifier struct {
	emails map[string]string
}

func (v *stubVerifier) Verify(_ context.Context, assertion string) (string, error) {
	email, ok := v.emails[assertion]
	if !ok {
		return "", auth.ErrInvalidAssertion
	}
	return email, nil
}

var _ services.IdentityVerifier = (*stubVerifier)(nil)

const testClientID = "test-client-id.apps.googleusercontent.com"

type testEnv struct {
	router   *chi.Mux
	users    *memUserRepo
	vault    *memVaultRepo
	tags     *memTagRepo
	verifier *stubVerifier
	issuer   *auth.TokenIssuer
}

// newTestEnv assembles the routes the way internal/server does, with
// in-memory repositories and a stubbed identity provider.
func newTestEnv() *testEnv {
	users := newMemUserRepo()
	vault := &memVaultRepo{}
	tags := &memTagRepo{}
	verifier := &stubVerifier{emails: map[string]string{}}
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authService := services.NewAuthService(users, verifier, issuer)
	userService := services.NewUserService(users)
	vaultService := services.NewVaultService(vault, tags)

	authHandler := NewAuthHandler(authService, userService, testClientID, logger)
	vaultHandler := NewVaultHandler(vaultService, logger)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, authHandler)
	})
	router.Group(func(r chi.Router) {
		r.Use(RequireAuth(issuer))
		r.Patch("/user/username", authHandler.UpdateUsername)
		VaultRouter(r, vaultHandler)
	})

	return &testEnv{
		router:   router,
		users:    users,
		vault:    vault,
		tags:     tags,
		verifier: verifier,
		issuer:   issuer,
	}
}
