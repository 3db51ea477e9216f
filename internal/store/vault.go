package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/intervault/apiserver/types"
)

// VaultRepository handles persistence for vault entries.
type VaultRepository struct {
	db *sql.DB
}

func NewVaultRepository(db *sql.DB) *VaultRepository {
	return &VaultRepository{db: db}
}

// Create inserts the entry and its tag links in one transaction. Any failure
// rolls back the whole write.
func (r *VaultRepository) Create(ctx context.Context, entry types.VaultEntry, tagIDs []int) (int, error) {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertEntry = `
		INSERT INTO vault (user_id, question, metadata)
		VALUES ($1, $2, $3)
		RETURNING id`
	var entryID int
	if err := tx.QueryRowContext(ctx, insertEntry, entry.OwnerID, entry.Question, metadataJSON).Scan(&entryID); err != nil {
		return 0, err
	}

	const insertLink = `INSERT INTO question_tags (question_id, tag_id) VALUES ($1, $2)`
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, insertLink, entryID, tagID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return entryID, nil
}

// Search returns the owner's entries whose question or stored answer contains
// the query, case-insensitively. The owner filter is the privacy boundary.
func (r *VaultRepository) Search(ctx context.Context, ownerID int, query string) ([]types.VaultEntry, error) {
	const searchQuery = `
		SELECT v.id, v.user_id, v.question, v.metadata, v.created_at,
			COALESCE(
				json_agg(
					json_build_object('id', t.id, 'name', t.name, 'type', t.type)
				) FILTER (WHERE t.id IS NOT NULL),
				'[]'
			) AS tags
		FROM vault v
		LEFT JOIN question_tags qt ON v.id = qt.question_id
		LEFT JOIN tags t ON qt.tag_id = t.id
		WHERE v.user_id = $1
			AND (v.question ILIKE $2 OR v.metadata->>'answer' ILIKE $2)
		GROUP BY v.id
		ORDER BY v.id`
	rows, err := r.db.QueryContext(ctx, searchQuery, ownerID, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// List returns a page of the owner's entries along with the owner's total.
func (r *VaultRepository) List(ctx context.Context, ownerID, offset, limit int) ([]types.VaultEntry, int, error) {
	const countQuery = `SELECT COUNT(1) FROM vault WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT v.id, v.user_id, v.question, v.metadata, v.created_at,
			COALESCE(
				json_agg(
					json_build_object('id', t.id, 'name', t.name, 'type', t.type)
				) FILTER (WHERE t.id IS NOT NULL),
				'[]'
			) AS tags
		FROM vault v
		LEFT JOIN question_tags qt ON v.id = qt.question_id
		LEFT JOIN tags t ON qt.tag_id = t.id
		WHERE v.user_id = $1
		GROUP BY v.id
		ORDER BY v.id
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, ownerID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func scanEntries(rows *sql.Rows) ([]types.VaultEntry, error) {
	entries := make([]types.VaultEntry, 0)
	for rows.Next() {
		var entry types.VaultEntry
		var metadataJSON, tagsJSON []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.OwnerID,
			&entry.Question,
			&metadataJSON,
			&entry.CreatedAt,
			&tagsJSON,
		); err != nil {
			return nil, err
		}

		_ = json.Unmarshal(metadataJSON, &entry.Metadata)
		_ = json.Unmarshal(tagsJSON, &entry.Tags)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
