// Package exporter writes the pipeline report tables for an external
// renderer: one CSV per table plus a combined XLSX workbook.
//
// Undefined values (NaN means, failed branches) are written as "NA",
// never coerced to zero. CSV files carry a UTF-8 BOM so Excel opens
// them correctly.
package exporter
