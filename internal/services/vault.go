package services

import (
	"context"
	"errors"
	"strings"

	"github.com/intervault/apiserver/types"
)

var (
	// ErrQuestionRequired is returned when an entry has no question text.
	ErrQuestionRequired = errors.New("question is required")

	// ErrAnswerRequired is returned when an entry has no answer text.
	ErrAnswerRequired = errors.New("answer is required")

	// ErrTagNameRequired is returned when a tag has no name.
	ErrTagNameRequired = errors.New("tag name is required")
)

// VaultRepository defines persistence operations for vault entries.
type VaultRepository interface {
	Create(ctx context.Context, entry types.VaultEntry, tagIDs []int) (int, error)
	Search(ctx context.Context, ownerID int, query string) ([]types.VaultEntry, error)
	List(ctx context.Context, ownerID, offset, limit int) ([]types.VaultEntry, int, error)
}

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	Create(ctx context.Context, name, tagType string) (types.Tag, error)
	List(ctx context.Context) ([]types.Tag, error)
}

// VaultService encapsulates vault use-cases. Every read is scoped to the
// calling owner; entries are never shared across users.
type VaultService struct {
	entries VaultRepository
	tags    TagRepository
}

func NewVaultService(entries VaultRepository, tags TagRepository) *VaultService {
	return &VaultService{entries: entries, tags: tags}
}

func (s *VaultService) Add(ctx context.Context, ownerID int, question string, metadata types.EntryMetadata, tagIDs []int) (int, error) {
	if strings.TrimSpace(question) == "" {
		return 0, ErrQuestionRequired
	}
	if strings.TrimSpace(metadata.Answer) == "" {
		return 0, ErrAnswerRequired
	}

	entry := types.VaultEntry{
		OwnerID:  ownerID,
		Question: question,
		Metadata: metadata,
	}
	return s.entries.Create(ctx, entry, tagIDs)
}

func (s *VaultService) Search(ctx context.Context, ownerID int, query string) ([]types.VaultEntry, error) {
	return s.entries.Search(ctx, ownerID, query)
}

func (s *VaultService) List(ctx context.Context, ownerID, offset, limit int) ([]types.VaultEntry, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.entries.List(ctx, ownerID, offset, limit)
}

func (s *VaultService) CreateTag(ctx context.Context, name, tagType string) (types.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Tag{}, ErrTagNameRequired
	}
	return s.tags.Create(ctx, name, tagType)
}

func (s *VaultService) ListTags(ctx context.Context) ([]types.Tag, error) {
	return s.tags.List(ctx)
}
