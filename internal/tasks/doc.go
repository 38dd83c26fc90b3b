// Package tasks implements the multi-step operations built on top of the Spotify service and sessions.
//
// # Core Operations
//
//  1. [FetchProfile] : fetch a user's top tracks and top artists
//     - Both endpoints are requested concurrently; neither depends on the other
//     - Raw bodies are kept for saving into a session, typed items and genres for display
//
//  2. [ShareProfile] : fetch a profile and save it into a session slot on a relay
//
//  3. [Compare] : compute the overlap between the two slots of a session
//     - Accepts Spotify paging objects ({"items": [...]}) or bare arrays
//     - Tracks match by ID, falling back to normalized title/artist ([shared.NormalizeTrackKey])
//     - Reports shared tracks, artists and genres with Jaccard overlaps scaled to 0-100
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Updates use select with default so progress
// reporting never blocks the operation.
package tasks
