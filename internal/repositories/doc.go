// Package repositories implements persistent session stores.
//
// Both repositories satisfy session.Store and session.SlotSaver, so the manager can replace one slot
// without reading and rewriting the whole session.
//
// Key Implementations:
//   - [SessionRepository] : SQLite, schema from the embedded migrations in shared
//   - [RedisSessionRepository] : Redis, one JSON value per session under [RedisKeyPrefix]
//
// Stores report a duplicate code on create with shared.ErrSessionExists and unknown codes with
// shared.ErrSessionNotFound.
package repositories
