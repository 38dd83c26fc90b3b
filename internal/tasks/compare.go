package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
)

// SharedItem is a track or artist present in both users' lists.
type SharedItem struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Artist string `json:"artist,omitempty"`
}

// Comparison summarises the overlap between two users' saved data.
//
// Overlaps are Jaccard indices scaled to 0-100. Score averages the artist and genre overlaps.
type Comparison struct {
	SharedTracks  []SharedItem `json:"sharedTracks"`
	SharedArtists []SharedItem `json:"sharedArtists"`
	SharedGenres  []string     `json:"sharedGenres"`
	TrackOverlap  int          `json:"trackOverlap"`
	ArtistOverlap int          `json:"artistOverlap"`
	GenreOverlap  int          `json:"genreOverlap"`
	Score         int          `json:"score"`
}

// item is the subset of a Spotify track or artist object that comparison reads.
type item struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Genres  []string `json:"genres"`
	Artists []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
}

func (i item) artistName() string {
	if len(i.Artists) == 0 {
		return ""
	}
	return i.Artists[0].Name
}

func (i item) trackKey() string {
	if i.ID != "" {
		return i.ID
	}
	return shared.NormalizeTrackKey(i.Name, i.artistName())
}

func (i item) artistKey() string {
	if i.ID != "" {
		return i.ID
	}
	return strings.ToLower(strings.TrimSpace(i.Name))
}

// parseItems accepts a Spotify paging object ({"items": [...]}), a bare array, or null.
// Array elements that are not objects are skipped.
func parseItems(raw json.RawMessage) ([]item, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var elems []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
	case '{':
		var page struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, err
		}
		elems = page.Items
	default:
		return nil, fmt.Errorf("expected an array or an object with items")
	}

	items := make([]item, 0, len(elems))
	for _, e := range elems {
		var it item
		if err := json.Unmarshal(e, &it); err != nil {
			continue
		}
		if it.ID == "" && it.Name == "" {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

type profileItems struct {
	tracks  []item
	artists []item
}

func parseUserData(label string, d *models.UserData) (*profileItems, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: %s has no saved data", shared.ErrSessionIncomplete, label)
	}

	tracks, err := parseItems(d.Tracks)
	if err != nil {
		return nil, fmt.Errorf("%w: %s tracks: %v", shared.ErrInvalidInput, label, err)
	}
	artists, err := parseItems(d.Artists)
	if err != nil {
		return nil, fmt.Errorf("%w: %s artists: %v", shared.ErrInvalidInput, label, err)
	}
	return &profileItems{tracks: tracks, artists: artists}, nil
}

// Compare computes shared tracks, artists and genres between two users' data.
//
// Tracks match by Spotify ID, falling back to normalized title and first artist. Artists match by ID or name.
func Compare(a, b *models.UserData) (*Comparison, error) {
	pa, err := parseUserData(string(models.UserA), a)
	if err != nil {
		return nil, err
	}
	pb, err := parseUserData(string(models.UserB), b)
	if err != nil {
		return nil, err
	}

	c := &Comparison{SharedGenres: []string{}}

	var tracksA, tracksB []string
	c.SharedTracks, tracksA, tracksB = intersect(pa.tracks, pb.tracks, item.trackKey, func(i item) SharedItem {
		return SharedItem{ID: i.ID, Name: i.Name, Artist: i.artistName()}
	})
	c.TrackOverlap = jaccard(tracksA, tracksB, len(c.SharedTracks))

	var artistsA, artistsB []string
	c.SharedArtists, artistsA, artistsB = intersect(pa.artists, pb.artists, item.artistKey, func(i item) SharedItem {
		return SharedItem{ID: i.ID, Name: i.Name}
	})
	c.ArtistOverlap = jaccard(artistsA, artistsB, len(c.SharedArtists))

	genresA, genresB := genreSet(pa.artists), genreSet(pb.artists)
	inB := make(map[string]bool, len(genresB))
	for _, g := range genresB {
		inB[g] = true
	}
	for _, g := range genresA {
		if inB[g] {
			c.SharedGenres = append(c.SharedGenres, g)
		}
	}
	c.GenreOverlap = jaccard(genresA, genresB, len(c.SharedGenres))

	c.Score = int(math.Round(float64(c.ArtistOverlap+c.GenreOverlap) / 2))
	return c, nil
}

// intersect returns the items of a whose key also appears in b, in a's order, plus each side's distinct keys.
func intersect(a, b []item, key func(item) string, view func(item) SharedItem) ([]SharedItem, []string, []string) {
	keysA := distinct(a, key)
	keysB := distinct(b, key)

	inB := make(map[string]bool, len(keysB))
	for _, k := range keysB {
		inB[k] = true
	}

	common := []SharedItem{}
	seen := make(map[string]bool)
	for _, it := range a {
		k := key(it)
		if inB[k] && !seen[k] {
			seen[k] = true
			common = append(common, view(it))
		}
	}
	return common, keysA, keysB
}

func distinct(items []item, key func(item) string) []string {
	seen := make(map[string]bool, len(items))
	keys := make([]string, 0, len(items))
	for _, it := range items {
		k := key(it)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// genreSet flattens artist genres, lowercased, de-duplicated in first-seen order.
func genreSet(artists []item) []string {
	seen := make(map[string]bool)
	genres := []string{}
	for _, a := range artists {
		for _, g := range a.Genres {
			g = strings.ToLower(strings.TrimSpace(g))
			if g == "" || seen[g] {
				continue
			}
			seen[g] = true
			genres = append(genres, g)
		}
	}
	return genres
}

// jaccard returns |A∩B| / |A∪B| as a 0-100 integer. Two empty sets score 0.
func jaccard(a, b []string, common int) int {
	union := len(a) + len(b) - common
	if union == 0 {
		return 0
	}
	return int(math.Round(float64(common) / float64(union) * 100))
}
