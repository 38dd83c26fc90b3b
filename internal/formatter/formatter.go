// package formatter renders top tracks, artists, genres and session comparisons as text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
)

// Format selects an output encoding.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ParseFormat accepts "text", "markdown" (or "md"), "csv" and "json". Empty means [Text].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Tracks renders top tracks in the given format.
func Tracks(tracks []services.SpotifyTrack, f Format) ([]byte, error) {
	switch f {
	case Markdown:
		return TracksToMarkdown(tracks), nil
	case CSV:
		return TracksToCSV(tracks)
	case JSON:
		return shared.MarshalJSON(tracks, true)
	default:
		return TracksToText(tracks), nil
	}
}

// Artists renders top artists in the given format.
func Artists(artists []services.SpotifyArtist, f Format) ([]byte, error) {
	switch f {
	case Markdown:
		return ArtistsToMarkdown(artists), nil
	case CSV:
		return ArtistsToCSV(artists)
	case JSON:
		return shared.MarshalJSON(artists, true)
	default:
		return ArtistsToText(artists), nil
	}
}

// Genres renders a genre list in the given format.
func Genres(genres []string, f Format) ([]byte, error) {
	switch f {
	case Markdown:
		var buf bytes.Buffer
		buf.WriteString("# Top Genres\n\n")
		for _, g := range genres {
			fmt.Fprintf(&buf, "- %s\n", g)
		}
		return buf.Bytes(), nil
	case CSV:
		rows := make([][]string, 0, len(genres))
		for i, g := range genres {
			rows = append(rows, []string{strconv.Itoa(i + 1), g})
		}
		return writeCSV([]string{"Rank", "Genre"}, rows)
	case JSON:
		return shared.MarshalJSON(map[string][]string{"genres": genres}, true)
	default:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "Genres: %d\n\n", len(genres))
		for i, g := range genres {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, g)
		}
		return buf.Bytes(), nil
	}
}

// TracksToText lists tracks as "N. Artist - Title".
func TracksToText(tracks []services.SpotifyTrack) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))
	for i, t := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, t.ArtistNames(), t.Name)
	}

	return buf.Bytes()
}

// TracksToMarkdown renders a numbered track list with album and duration.
func TracksToMarkdown(tracks []services.SpotifyTrack) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Top Tracks\n\n")
	for i, t := range tracks {
		albumPart := ""
		if t.Album.Name != "" {
			albumPart = fmt.Sprintf(" (%s)", t.Album.Name)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, t.ArtistNames(), t.Name, albumPart, FormatDuration(t.DurationMS))
	}

	return buf.Bytes()
}

// TracksToCSV writes columns: Rank, ID, Title, Artist, Album, Duration.
func TracksToCSV(tracks []services.SpotifyTrack) ([]byte, error) {
	rows := make([][]string, 0, len(tracks))
	for i, t := range tracks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.ID,
			t.Name,
			t.ArtistNames(),
			t.Album.Name,
			FormatDuration(t.DurationMS),
		})
	}
	return writeCSV([]string{"Rank", "ID", "Title", "Artist", "Album", "Duration"}, rows)
}

// ArtistsToText lists artists with their genres.
func ArtistsToText(artists []services.SpotifyArtist) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Artists: %d\n\n", len(artists))
	for i, a := range artists {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, a.Name)
		if len(a.Genres) > 0 {
			fmt.Fprintf(&buf, "   Genres: %s\n", strings.Join(a.Genres, ", "))
		}
	}

	return buf.Bytes()
}

// ArtistsToMarkdown renders a numbered artist list with genres in italics.
func ArtistsToMarkdown(artists []services.SpotifyArtist) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Top Artists\n\n")
	for i, a := range artists {
		fmt.Fprintf(&buf, "%d. **%s**", i+1, a.Name)
		if len(a.Genres) > 0 {
			fmt.Fprintf(&buf, " _%s_", strings.Join(a.Genres, ", "))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// ArtistsToCSV writes columns: Rank, ID, Name, Genres, Popularity. Genres are joined with ";".
func ArtistsToCSV(artists []services.SpotifyArtist) ([]byte, error) {
	rows := make([][]string, 0, len(artists))
	for i, a := range artists {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.ID,
			a.Name,
			strings.Join(a.Genres, ";"),
			strconv.Itoa(a.Popularity),
		})
	}
	return writeCSV([]string{"Rank", "ID", "Name", "Genres", "Popularity"}, rows)
}

// Comparison renders a session comparison. CSV is not supported.
func Comparison(c *tasks.Comparison, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return shared.MarshalJSON(c, true)
	case CSV:
		return nil, fmt.Errorf("%w: csv is not available for comparisons", shared.ErrInvalidArgument)
	}

	var buf bytes.Buffer
	heading := func(title string) {
		if f == Markdown {
			fmt.Fprintf(&buf, "\n## %s\n\n", title)
		} else {
			fmt.Fprintf(&buf, "\n%s:\n", title)
		}
	}
	bullet := "  - "
	if f == Markdown {
		buf.WriteString("# Session Comparison\n\n")
		bullet = "- "
	}

	fmt.Fprintf(&buf, "Score: %d/100\n", c.Score)
	fmt.Fprintf(&buf, "Track overlap: %d%%\n", c.TrackOverlap)
	fmt.Fprintf(&buf, "Artist overlap: %d%%\n", c.ArtistOverlap)
	fmt.Fprintf(&buf, "Genre overlap: %d%%\n", c.GenreOverlap)

	if len(c.SharedTracks) > 0 {
		heading("Shared tracks")
		for _, t := range c.SharedTracks {
			fmt.Fprintf(&buf, "%s%s - %s\n", bullet, t.Artist, t.Name)
		}
	}
	if len(c.SharedArtists) > 0 {
		heading("Shared artists")
		for _, a := range c.SharedArtists {
			fmt.Fprintf(&buf, "%s%s\n", bullet, a.Name)
		}
	}
	if len(c.SharedGenres) > 0 {
		heading("Shared genres")
		for _, g := range c.SharedGenres {
			fmt.Fprintf(&buf, "%s%s\n", bullet, g)
		}
	}

	return buf.Bytes(), nil
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int) string {
	if ms <= 0 {
		return "0:00"
	}
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// WriteFile writes rendered output to path, creating or truncating it.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: empty output path", shared.ErrInvalidArgument)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
