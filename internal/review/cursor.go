package review

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the position after the last review of a page. Reviews are ordered
// by updated_at then user_id, both descending.
type Cursor struct {
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `json:"user_id"`
}

// EncodeCursor returns "" for the zero cursor.
func EncodeCursor(c Cursor) string {
	if c.UserID == "" {
		return ""
	}
	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes what EncodeCursor produced. An empty string is the
// first page and yields nil.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var c Cursor
	if err := json.Unmarshal(decoded, &c); err != nil || c.UserID == "" || c.UpdatedAt.IsZero() {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}
