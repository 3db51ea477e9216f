package services

import (
	"context"
	"testing"

	"github.com/intervault/apiserver/internal/store"
	"github.com/intervault/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memVaultRepo struct {
	nextID  int
	entries []types.VaultEntry

	lastOffset int
	lastLimit  int
}

func (r *memVaultRepo) Create(_ context.Context, entry types.VaultEntry, tagIDs []int) (int, error) {
	r.nextID++
	entry.ID = r.nextID
	r.entries = append(r.entries, entry)
	return entry.ID, nil
}

func (r *memVaultRepo) Search(_ context.Context, ownerID int, query string) ([]types.VaultEntry, error) {
	var out []types.VaultEntry
	for _, entry := range r.entries {
		if entry.OwnerID == ownerID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *memVaultRepo) List(_ context.Context, ownerID, offset, limit int) ([]types.VaultEntry, int, error) {
	r.lastOffset = offset
	r.lastLimit = limit
	var out []types.VaultEntry
	for _, entry := range r.entries {
		if entry.OwnerID == ownerID {
			out = append(out, entry)
		}
	}
	return out, len(out), nil
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
	return r.tags, nil
}

func TestVaultAddValidation(t *testing.T) {
	repo := &memVaultRepo{}
	svc := NewVaultService(repo, &memTagRepo{})

	_, err := svc.Add(context.Background(), 1, "  ", types.EntryMetadata{Answer: "a"}, nil)
	assert.ErrorIs(t, err, ErrQuestionRequired)

	_, err = svc.Add(context.Background(), 1, "What is a mutex?", types.EntryMetadata{}, nil)
	assert.ErrorIs(t, err, ErrAnswerRequired)

	assert.Empty(t, repo.entries)

	id, err := svc.Add(context.Background(), 1, "What is a mutex?", types.EntryMetadata{Answer: "A lock"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	require.Len(t, repo.entries, 1)
	assert.Equal(t, 1, repo.entries[0].OwnerID)
}

func TestVaultListClampsPagination(t *testing.T) {
	repo := &memVaultRepo{}
	svc := NewVaultService(repo, &memTagRepo{})

	_, _, err := svc.List(context.Background(), 1, -5, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.lastOffset)
	assert.Equal(t, 10, repo.lastLimit)

	_, _, err = svc.List(context.Background(), 1, 20, 500)
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastOffset)
	assert.Equal(t, 100, repo.lastLimit)
}

func TestVaultCreateTag(t *testing.T) {
	svc := NewVaultService(&memVaultRepo{}, &memTagRepo{})

	_, err := svc.CreateTag(context.Background(), "   ", "topic")
	assert.ErrorIs(t, err, ErrTagNameRequired)

	tag, err := svc.CreateTag(context.Background(), "  concurrency ", "topic")
	require.NoError(t, err)
	assert.Equal(t, "concurrency", tag.Name)

	_, err = svc.CreateTag(context.Background(), "concurrency", "topic")
	assert.ErrorIs(t, err, store.ErrDuplicateTag)
}
