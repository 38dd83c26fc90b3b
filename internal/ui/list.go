package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/resonate/internal/services"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = artistItem{}
	_ list.Item = genreItem("")
)

// trackItem wraps [services.SpotifyTrack] to implement [list.Item].
type trackItem struct {
	track services.SpotifyTrack
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := i.track.ArtistNames()
	if i.track.Album.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album.Name)
	}
	return desc
}

// artistItem wraps [services.SpotifyArtist] to implement [list.Item].
type artistItem struct {
	artist services.SpotifyArtist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	if len(i.artist.Genres) == 0 {
		return "no genres listed"
	}
	return strings.Join(i.artist.Genres, ", ")
}

// genreItem is one entry of the derived genre set.
type genreItem string

func (i genreItem) FilterValue() string { return string(i) }
func (i genreItem) Title() string       { return string(i) }
func (i genreItem) Description() string { return "" }

func newList(title string, items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	return l
}

func trackItems(tracks []services.SpotifyTrack) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

func artistItems(artists []services.SpotifyArtist) []list.Item {
	items := make([]list.Item, len(artists))
	for i, a := range artists {
		items[i] = artistItem{artist: a}
	}
	return items
}

func genreItems(genres []string) []list.Item {
	items := make([]list.Item, len(genres))
	for i, g := range genres {
		items[i] = genreItem(g)
	}
	return items
}
