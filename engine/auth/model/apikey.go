package model

import (
	"database/sql"
	"time"

	"github.com/substratehq/substrate/engine/core"
)

// KeyPrefix is prepended to every generated API key so leaked keys can be
// attributed during secret scanning.
const KeyPrefix = "sbst_"

// APIKey represents an API key for authentication
type APIKey struct {
	ID          core.ID      `db:"id"`
	UserID      core.ID      `db:"user_id"`
	Hash        []byte       `db:"hash"`        // bcrypt-hashed key
	Fingerprint []byte       `db:"fingerprint"` // SHA-256 hash for O(1) lookups
	Prefix      string       `db:"prefix"`
	CreatedAt   time.Time    `db:"created_at"`
	LastUsed    sql.NullTime `db:"last_used"`
}
