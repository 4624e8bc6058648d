package repositories

import (
	"context"
)

// Operation names recorded against idempotency keys.
const (
	OpConfirmDocument  = "confirm_document"
	OpCreateSettlement = "create_settlement"
)

// IdempotencyRepository records completed mutating operations keyed by a
// client-supplied token. The atomic write paths insert the key inside their
// own transaction; this interface covers the pre-flight replay lookup.
type IdempotencyRepository interface {
	// FindEntityID returns the entity recorded for a key/operation pair, or
	// ErrNotFound when the key has not been used.
	FindEntityID(ctx context.Context, key string, operation string) (string, error)
}
