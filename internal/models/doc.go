// Package models defines the domain entities shared by the Resonate relay, its stores and the CLI.
//
// A [Session] pairs two users under a six character code. Each side of the pairing is a
// [UserSlot] ("userA" or "userB") holding either nothing or a complete [UserData] value.
//
// [UserData] keeps tracks and artists as raw JSON: the relay stores what the client sent and
// returns it unchanged. Typed views of Spotify objects live in the services package.
package models
