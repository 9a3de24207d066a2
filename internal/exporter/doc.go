// Package exporter writes pipeline results to the output directory.
//
// Every writer goes through files.Manager, so a file either appears
// complete or not at all.
//
// CSVWriter: delimited text with an optional UTF-8 BOM for Excel.
//
// WorkbookWriter: an .xlsx workbook with one sheet per result table.
//
// WriteJSON: indented JSON documents such as the chosen model parameters.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(files.NewManager(paths))
//	err := writer.WriteSimpleCSV("resumen.csv", headers, records)
package exporter
