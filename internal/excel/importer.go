package excel

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/artquizbot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	CatalogPath    string // Catalog JSON file the rows are appended to
	IDColumn       string // Column with the stable painting id
	TitleColumn    string // Column with the title
	ArtistColumn   string // Column with the artist
	YearColumn     string // Column with the year
	MuseumColumn   string // Column with the museum label
	ImageURLColumn string // Column with the image URL
	NoteColumn     string // Column with the optional note
	SheetName      string // Name of the sheet to import
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		IDColumn:       "A",
		TitleColumn:    "B",
		ArtistColumn:   "C",
		YearColumn:     "D",
		MuseumColumn:   "E",
		ImageURLColumn: "F",
		NoteColumn:     "G",
		SheetName:      "Sheet1",
		StartRow:       2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Added          int
	Skipped        int
	Errors         []string
}

// ImportPaintings appends rows from an Excel or CSV file to the catalog JSON
// file. Rows with a duplicate id or an unknown museum are reported and
// skipped; the running process keeps serving its loaded catalog, the new
// items become visible after a restart.
func ImportPaintings(config ImportConfig) (*ImportResult, error) {
	existing, err := readCatalog(config.CatalogPath)
	if err != nil {
		return nil, err
	}

	knownIDs := make(map[string]bool, len(existing))
	for _, p := range existing {
		knownIDs[p.ID] = true
	}

	ext := strings.ToLower(filepath.Ext(config.FilePath))

	var rows [][]string
	if ext == ".csv" {
		rows, err = readCSVRows(config.FilePath)
	} else {
		rows, err = readExcelRows(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	appended := existing

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		painting, err := rowToPainting(row, config)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			result.Skipped++
			continue
		}
		if knownIDs[painting.ID] {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate id %s", i+1, painting.ID))
			result.Skipped++
			continue
		}

		knownIDs[painting.ID] = true
		appended = append(appended, painting)
		result.Added++
	}

	if result.Added > 0 {
		if err := writeCatalog(config.CatalogPath, appended); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func rowToPainting(row []string, config ImportConfig) (models.Painting, error) {
	painting := models.Painting{
		ID:       cellValue(row, config.IDColumn),
		Title:    cellValue(row, config.TitleColumn),
		Artist:   cellValue(row, config.ArtistColumn),
		Year:     cellValue(row, config.YearColumn),
		Museum:   cellValue(row, config.MuseumColumn),
		ImageURL: cellValue(row, config.ImageURLColumn),
		Note:     cellValue(row, config.NoteColumn),
	}

	if painting.ID == "" {
		return painting, fmt.Errorf("missing id")
	}
	if painting.Title == "" {
		return painting, fmt.Errorf("missing title")
	}
	if !models.ValidMuseum(painting.Museum) {
		return painting, fmt.Errorf("unknown museum %q", painting.Museum)
	}
	if painting.ImageURL == "" {
		return painting, fmt.Errorf("missing image URL")
	}
	return painting, nil
}

// cellValue returns the trimmed cell of a lettered column, or "" when the
// row is too short
func cellValue(row []string, column string) string {
	idx := columnIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnIndex converts a spreadsheet column letter to a zero-based index
func columnIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	idx := 0
	for _, r := range column {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}

func readExcelRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %v", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readCatalog(path string) ([]models.Painting, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %v", err)
	}
	var paintings []models.Painting
	if err := json.Unmarshal(data, &paintings); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %v", err)
	}
	return paintings, nil
}

func writeCatalog(path string, paintings []models.Painting) error {
	data, err := json.MarshalIndent(paintings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %v", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace catalog: %v", err)
	}
	return nil
}
