package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"coffee-orders/internal/model"

	"github.com/google/uuid"
)

// Cursor points at an order's position within the created-at descending sort.
// CreatedAt is kept as the RFC 3339 nano string it was encoded with so that
// encode/decode round-trips exactly.
type Cursor struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt string    `json:"createdAt"`
}

// NewCursor builds a cursor for an order identified by id and creation time.
func NewCursor(id uuid.UUID, createdAt time.Time) Cursor {
	return Cursor{
		ID:        id,
		CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
	}
}

// Encode serialises the cursor to an opaque base64 token.
func (c Cursor) Encode() string {
	raw, err := json.Marshal(c)
	if err != nil {
		// Cursor has no unmarshalable fields; this cannot happen.
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode parses an opaque cursor token. The name ("after" or "before") is
// used in the error message so callers know which cursor was malformed.
func Decode(token, name string) (Cursor, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, model.InvalidInput("%s cursor is invalid", name)
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, model.InvalidInput("%s cursor is invalid", name)
	}
	if c.ID == uuid.Nil || c.CreatedAt == "" {
		return Cursor{}, model.InvalidInput("%s cursor is invalid", name)
	}
	if _, err := time.Parse(time.RFC3339Nano, c.CreatedAt); err != nil {
		return Cursor{}, model.InvalidInput("%s cursor is invalid", name)
	}

	return c, nil
}

// Matches reports whether the cursor points at the given order.
func (c Cursor) Matches(order model.Order) bool {
	return order.ID == c.ID &&
		order.CreatedAt.UTC().Format(time.RFC3339Nano) == c.CreatedAt
}
