package store

import (
	"context"
	"database/sql"

	"github.com/intervault/apiserver/types"
)

// TagRepository handles persistence for tags.
type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Create(ctx context.Context, name, tagType string) (types.Tag, error) {
	const query = `
		INSERT INTO tags (name, type)
		VALUES ($1, $2)
		RETURNING id`
	tag := types.Tag{Name: name, Type: tagType}
	if err := r.db.QueryRowContext(ctx, query, name, tagType).Scan(&tag.ID); err != nil {
		return types.Tag{}, translateUnique(err)
	}
	return tag, nil
}

func (r *TagRepository) List(ctx context.Context) ([]types.Tag, error) {
	const query = `SELECT id, name, type FROM tags ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]types.Tag, 0)
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Type); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}
