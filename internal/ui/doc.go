// Package ui implements the interactive terminal interface and the shared CLI palette.
//
// The TUI walks through a small flow built on bubbletea's Elm architecture:
//  1. [LoadingView] : top tracks and artists are fetched concurrently, progress shown with a spinner
//  2. [TracksView], [ArtistsView], [GenresView] : browse the results, tab between them
//  3. [ShareView] : type a session code
//  4. [ConfirmView] : pick the userA or userB slot
//  5. [ResultView] : outcome of the save
//
// The [Model] receives async results through the [Msg] union type. Progress updates arrive over a channel
// fed by tasks.FetchProfile.
//
// [Title], [Success], [Error], [Warn] and [Muted] render CLI output with the lipgloss palette.
package ui
