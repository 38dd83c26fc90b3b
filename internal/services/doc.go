// Package services defines the [Service] interface for the Spotify operations Resonate relays and implements it.
//
// # Spotify Implementation
//
// [SpotifyService] exchanges authorization codes for tokens with [oauth2.Config.Exchange], authenticating the
// client with HTTP Basic credentials. The relay never stores or refreshes tokens: each call to the top items
// endpoints carries the caller's access token through an [oauth2.StaticTokenSource].
//
// Top items are fetched with a fixed page size of [TopItemsLimit] and returned as raw JSON so the relay can
// forward Spotify's body unchanged. [SpotifyService.TopTracks] and [SpotifyService.TopArtists] decode the same
// payload into [Paging] values for the CLI and formatters.
//
// # Relay Client
//
// [APIService] talks to a running relay over HTTP. The CLI session commands use it to create, join and fill
// sessions on a remote server.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCode] : empty authorization code
//   - [shared.ErrMissingToken] : empty access token
//   - [shared.ErrMissingCredentials] : client id or secret not configured
//   - [shared.ErrInvalidTimeRange] : unknown time_range value
//   - [shared.ErrUpstream] : Spotify returned a non-2xx status or the request failed
//   - [shared.ErrInvalidUpstreamJSON] : Spotify returned a body that is not JSON
//
// Upstream failures are reported as [*UpstreamError], which carries the diagnostic fields returned to HTTP callers.
package services
