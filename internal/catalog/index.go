package catalog

import (
	"fmt"
	"strings"

	"github.com/example/artquizbot/pkg/models"
)

// Index is the immutable in-memory catalog with two lookup maps: an exact
// key over all descriptive fields plus the image URL, and a fuzzy key over
// descriptive fields only. The fuzzy map recovers stable ids for answer-log
// rows written before ids existed, as long as the match is unique.
type Index struct {
	paintings []models.Painting
	byID      map[string]int
	exact     map[string]string   // normalized full key -> id
	fuzzy     map[string][]string // normalized descriptive key -> ids
}

func newIndex(paintings []models.Painting) (*Index, error) {
	idx := &Index{
		paintings: paintings,
		byID:      make(map[string]int, len(paintings)),
		exact:     make(map[string]string, len(paintings)),
		fuzzy:     make(map[string][]string, len(paintings)),
	}

	for i, p := range paintings {
		if _, dup := idx.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %s", p.ID)
		}
		idx.byID[p.ID] = i

		ek := exactKey(p.Title, p.Artist, p.Year, p.Museum, p.ImageURL)
		idx.exact[ek] = p.ID

		fk := fuzzyKey(p.Title, p.Artist, p.Year, p.Museum)
		idx.fuzzy[fk] = append(idx.fuzzy[fk], p.ID)
	}

	return idx, nil
}

// Size returns the number of catalog items
func (idx *Index) Size() int {
	return len(idx.paintings)
}

// IDs returns all catalog ids in load order
func (idx *Index) IDs() []string {
	ids := make([]string, len(idx.paintings))
	for i, p := range idx.paintings {
		ids[i] = p.ID
	}
	return ids
}

// Get returns the painting with the given id
func (idx *Index) Get(id string) (models.Painting, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return models.Painting{}, false
	}
	return idx.paintings[i], true
}

// Resolve recovers a stable id for a served painting: the given id if it is
// known, else an exact-key match, else a fuzzy-key match when unique.
// Returns "" when nothing resolves unambiguously.
func (idx *Index) Resolve(id, title, artist, year, museum, imageURL string) string {
	if id != "" {
		if _, ok := idx.byID[id]; ok {
			return id
		}
	}
	if found, ok := idx.exact[exactKey(title, artist, year, museum, imageURL)]; ok {
		return found
	}
	candidates := idx.fuzzy[fuzzyKey(title, artist, year, museum)]
	if len(candidates) == 1 {
		return candidates[0]
	}
	return ""
}

// normalize lowercases and collapses interior whitespace
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func exactKey(title, artist, year, museum, imageURL string) string {
	return normalize(title) + "|" + normalize(artist) + "|" + normalize(year) + "|" +
		normalize(museum) + "|" + normalize(imageURL)
}

func fuzzyKey(title, artist, year, museum string) string {
	return normalize(title) + "|" + normalize(artist) + "|" + normalize(year) + "|" + normalize(museum)
}
