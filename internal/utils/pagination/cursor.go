package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	apperr "github.com/kindled/match-engine/internal/errors"
)

// Cursor is the opaque pagination state we encode/decode.
// UserID + SwipedUnix (in millis) establish a stable cursor over
// (created_at DESC, actor_id DESC) ordered admirer lists.
type Cursor struct {
	UserID     uint64 `json:"user_id"`
	SwipedUnix int64  `json:"swiped_unix,omitempty"`
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token means first page; a malformed token fails with ErrInvalidCursor.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, apperr.ErrInvalidCursor
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, apperr.ErrInvalidCursor
	}
	return c, nil
}
