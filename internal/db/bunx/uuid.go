package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for database primary keys.
// UUIDv7 sorts by creation time, which keeps index pages warm, and works on
// both PostgreSQL and SQLite without a gen_random_uuid() dependency.
//
// Panics only on entropy source exhaustion, at which point no ID generation
// could proceed anyway.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
