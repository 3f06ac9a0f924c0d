package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paintings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validCatalog = `[
	{"id": "a1", "title": "Девятый вал", "artist": "Айвазовский", "year": "1850", "museum": "Русский музей", "image_url": "https://example.com/a1.jpg", "note": "Самая известная марина."},
	{"id": "b2", "title": "Грачи прилетели", "artist": "Саврасов", "year": "1871", "museum": "Третьяковская галерея", "image_url": "https://example.com/b2.jpg"},
	{"id": "c3", "title": "Последний день Помпеи", "artist": "Брюллов", "year": "1833", "museum": "Русский музей", "image_url": "https://example.com/c3.jpg"}
]`

func TestLoadValidCatalog(t *testing.T) {
	idx, err := Load(writeCatalogFile(t, validCatalog))
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Size())
	assert.Equal(t, []string{"a1", "b2", "c3"}, idx.IDs())

	p, ok := idx.Get("b2")
	require.True(t, ok)
	assert.Equal(t, "Грачи прилетели", p.Title)
}

func TestLoadRejectsCorruptCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing id",
			content: `[{"id": "", "title": "X", "artist": "Y", "year": "1900", "museum": "Русский музей", "image_url": "https://example.com/x.jpg"}]`,
		},
		{
			name: "duplicate id",
			content: `[
				{"id": "a1", "title": "X", "artist": "Y", "year": "1900", "museum": "Русский музей", "image_url": "https://example.com/x.jpg"},
				{"id": "a1", "title": "Z", "artist": "W", "year": "1901", "museum": "Третьяковская галерея", "image_url": "https://example.com/z.jpg"}
			]`,
		},
		{
			name:    "unknown museum",
			content: `[{"id": "a1", "title": "X", "artist": "Y", "year": "1900", "museum": "Лувр", "image_url": "https://example.com/x.jpg"}]`,
		},
		{
			name:    "missing image",
			content: `[{"id": "a1", "title": "X", "artist": "Y", "year": "1900", "museum": "Русский музей", "image_url": ""}]`,
		},
		{
			name:    "empty catalog",
			content: `[]`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeCatalogFile(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestResolveKnownID(t *testing.T) {
	idx, err := Load(writeCatalogFile(t, validCatalog))
	require.NoError(t, err)

	assert.Equal(t, "a1", idx.Resolve("a1", "", "", "", "", ""))
}

func TestResolveExactKey(t *testing.T) {
	idx, err := Load(writeCatalogFile(t, validCatalog))
	require.NoError(t, err)

	// Case and spacing are normalized away
	got := idx.Resolve("", "ДЕВЯТЫЙ  ВАЛ", "айвазовский", "1850", "русский музей", "https://example.com/a1.jpg")
	assert.Equal(t, "a1", got)
}

func TestResolveFuzzyKey(t *testing.T) {
	idx, err := Load(writeCatalogFile(t, validCatalog))
	require.NoError(t, err)

	// No image URL, but the descriptive fields match exactly one painting
	got := idx.Resolve("", "Грачи прилетели", "Саврасов", "1871", "Третьяковская галерея", "")
	assert.Equal(t, "b2", got)
}

func TestResolveAmbiguousReturnsNothing(t *testing.T) {
	two := `[
		{"id": "a1", "title": "Этюд", "artist": "Репин", "year": "1880", "museum": "Русский музей", "image_url": "https://example.com/1.jpg"},
		{"id": "a2", "title": "Этюд", "artist": "Репин", "year": "1880", "museum": "Русский музей", "image_url": "https://example.com/2.jpg"}
	]`
	idx, err := Load(writeCatalogFile(t, two))
	require.NoError(t, err)

	// Two candidates share the fuzzy key, resolution must refuse to guess
	assert.Equal(t, "", idx.Resolve("", "Этюд", "Репин", "1880", "Русский музей", ""))
	// The exact key still disambiguates
	assert.Equal(t, "a2", idx.Resolve("", "Этюд", "Репин", "1880", "Русский музей", "https://example.com/2.jpg"))
}

func TestResolveUnknown(t *testing.T) {
	idx, err := Load(writeCatalogFile(t, validCatalog))
	require.NoError(t, err)

	assert.Equal(t, "", idx.Resolve("zzz", "Неизвестная", "Никто", "2000", "Русский музей", ""))
}
