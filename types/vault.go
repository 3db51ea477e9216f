package types

import "time"

// VaultEntry is a stored question/answer record owned by a single user.
// Entries are create/read/search only; there is no edit path.
type VaultEntry struct {
	ID        int           `json:"id" db:"id"`
	OwnerID   int           `json:"user_id" db:"user_id"`
	Question  string        `json:"question" db:"question"`
	Metadata  EntryMetadata `json:"metadata" db:"metadata"`
	Tags      []Tag         `json:"tags" db:"-"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// EntryMetadata is the free-form bag stored alongside a question.
// Answer is always present; the rest is optional.
type EntryMetadata struct {
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
	InfoB    string `json:"info_b,omitempty"`
}

// Tag is a global label attachable to vault entries.
type Tag struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Type string `json:"type" db:"type"`
}
