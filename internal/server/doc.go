// Package server is the Resonate HTTP relay: routing, middleware, handlers and server lifecycle.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] uses
// [http.ServeMux] patterns and answers unknown paths and wrong methods with JSON messages.
//
// [Middleware] wraps handlers in reverse order (last added executes first). [NewApp] installs, in order:
//   - [Recover]
//   - [RequestID]
//   - [Logger]
//   - [CORS]
//   - [RateLimit]
//
// # Handlers
//
// Handlers implement [Handler], which adds the list of path patterns to [http.Handler].
//
//   - [SpotifyHandler] : token exchange, login URL, top tracks, top artists and top genres
//   - [SessionHandler] : create, join, save-data, read-back and compare
//   - [OAuthHandler] : one-shot authorization callback for the CLI login flow
//
// Errors from services and the session manager are translated to HTTP in one place (statusFor):
// client input is 400, unknown sessions 404, incomplete sessions 409, and upstream failures 500 with a
// "details" object describing the Spotify response.
package server
