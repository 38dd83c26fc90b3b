// Package session implements the registry of two-party comparison sessions.
//
// # Store
//
// [Store] is the persistence seam. Handlers never touch a map directly: they go through a [Manager],
// which is built around whichever Store the process was configured with:
//   - [MemoryStore] : process-local map, lost on restart (default)
//   - repositories.SessionRepository : SQLite
//   - repositories.RedisSessionRepository : Redis
//
// # Codes
//
// Session codes are six characters drawn from A-Z and 0-9 using crypto/rand. Stores refuse to
// create a session whose code is already live, and [Manager.CreateSession] draws a fresh code when
// that happens rather than overwriting the existing session.
//
// # Slots
//
// A session has two slots, "userA" and "userB". Joining does not claim a slot, so any number of
// clients may join the same code. Saving replaces one slot wholesale and leaves the other alone.
package session
