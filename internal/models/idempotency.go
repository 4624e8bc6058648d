package models

import "time"

// IdempotencyKey records a completed mutating operation keyed by a
// client-supplied token, so network retries replay the original result
// instead of double-posting.
type IdempotencyKey struct {
	Key       string    `db:"idempotency_key"`
	Operation string    `db:"operation"`
	EntityID  string    `db:"entity_id"`
	CreatedAt time.Time `db:"created_at"`
}
