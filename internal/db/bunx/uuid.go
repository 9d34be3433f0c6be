package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for database primary
// keys. Time-ordering keeps index pages warm, and generating in the
// application avoids a gen_random_uuid() dependency so the same models work
// on PostgreSQL and SQLite.
//
// Panics on generation failure, which only happens when the entropy source
// is exhausted; nothing else in the service can run safely at that point.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
