package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/example/artquizbot/pkg/models"
)

// Load reads the catalog file and builds the lookup index. The whole load is
// rejected on the first invalid or duplicate record: a corrupt catalog must
// not start the service.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %v", path, err)
	}

	var raw []models.Painting
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %v", path, err)
	}

	paintings := make([]models.Painting, 0, len(raw))
	for i, p := range raw {
		p.ID = strings.TrimSpace(p.ID)
		p.Title = strings.TrimSpace(p.Title)
		p.Artist = strings.TrimSpace(p.Artist)
		p.Year = strings.TrimSpace(p.Year)
		p.Museum = strings.TrimSpace(p.Museum)
		p.ImageURL = strings.TrimSpace(p.ImageURL)
		p.Note = strings.TrimSpace(p.Note)

		if p.ID == "" {
			return nil, fmt.Errorf("catalog record %d (%q) has no id", i, p.Title)
		}
		if !models.ValidMuseum(p.Museum) {
			return nil, fmt.Errorf("catalog record %s has unknown museum %q", p.ID, p.Museum)
		}
		if p.ImageURL == "" {
			return nil, fmt.Errorf("catalog record %s has no image URL", p.ID)
		}
		paintings = append(paintings, p)
	}

	if len(paintings) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no valid records", path)
	}

	return newIndex(paintings)
}
