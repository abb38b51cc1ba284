package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// CSVWriter writes report tables under a base directory.
type CSVWriter struct {
	baseDir string
}

// NewCSVWriter creates a writer rooted at baseDir.
func NewCSVWriter(baseDir string) *CSVWriter {
	return &CSVWriter{baseDir: baseDir}
}

// WriteTable writes one table as name.csv with a UTF-8 BOM, creating
// the directory if needed.
func (w *CSVWriter) WriteTable(name string, headers []string, records [][]string) error {
	path := filepath.Join(w.baseDir, name+".csv")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8.
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	slog.Info("wrote report table",
		slog.String("path", path),
		slog.Int("rows", len(records)))

	return writer.Error()
}

// formatFloat renders a value for a report cell; undefined values
// become "NA", never "0".
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
