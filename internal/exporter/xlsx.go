package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"hitpulse/internal/pipeline"
)

// WriteWorkbook bundles every report table into one XLSX workbook,
// one sheet per table.
func WriteWorkbook(path string, report *pipeline.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, table := range Tables(report) {
		if _, err := f.NewSheet(table.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", table.Name, err)
		}

		header := make([]interface{}, len(table.Headers))
		for i, h := range table.Headers {
			header[i] = h
		}
		if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
			return fmt.Errorf("write sheet %s headers: %w", table.Name, err)
		}

		for i, record := range table.Records {
			row := make([]interface{}, len(record))
			for j, cell := range record {
				row[j] = cell
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return fmt.Errorf("sheet %s row %d: %w", table.Name, i+2, err)
			}
			if err := f.SetSheetRow(table.Name, cell, &row); err != nil {
				return fmt.Errorf("write sheet %s row %d: %w", table.Name, i+2, err)
			}
		}
	}

	// Drop the default sheet so the workbook opens on real content.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	slog.Info("wrote report workbook", slog.String("path", path))
	return nil
}
