// Package outwriter renders report data as tables, CSV, JSON or Parquet.
package outwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/internal/parquet"
	"github.com/hotspotlabs/hotreport/schema"
)

// ErrParquetNeedsFile is returned when parquet output is requested without an output file.
var ErrParquetNeedsFile = errors.New("parquet output requires --output-file")

// OutWriter writes report data in the output format of a config.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport writes data using cfg's output format, file and display options.
func (ow *OutWriter) WriteReport(data *schema.ReportData, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportJSON(w, data)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFileCSV(w, data.Files, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeReportParquet(cfg.OutputFile, data); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(w, data, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// writeReportParquet writes the ranked files of data to a Parquet file.
func writeReportParquet(outputFile string, data *schema.ReportData) error {
	if outputFile == "" {
		return ErrParquetNeedsFile
	}
	rows := parquet.ConvertReportFiles(data, contract.GetPlainLabel)
	if err := parquet.WriteFile(outputFile, rows); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}

// writeReportTable writes the file table, the folder table and a short summary.
func writeReportTable(w io.Writer, data *schema.ReportData, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	if err := writeFileTable(w, data.Files, cfg, fmtFloat, intFmt); err != nil {
		return err
	}
	s := data.Summary
	if _, err := fmt.Fprintf(w, "Showing top %d of %d files (total commits: %d, total churn: %d, critical: %d)\n",
		len(data.Files), s.TotalFiles, s.TotalCommits, s.TotalChurn, s.CriticalFiles); err != nil {
		return err
	}

	if len(data.Folders) > 0 {
		if err := writeFolderTable(w, data.Folders, cfg, fmtFloat, intFmt); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Showing top %d folders\n", len(data.Folders)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Report completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	if data.RunID > 0 {
		if _, err := fmt.Fprintf(w, "Recorded as run %d\n", data.RunID); err != nil {
			return err
		}
	}
	return nil
}

// jsonFileResult adds rank and label to a file result.
type jsonFileResult struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	schema.FileResult
}

// jsonFolderResult adds rank and label to a folder result.
type jsonFolderResult struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	schema.FolderResult
}

// jsonReport shadows the file and folder lists of the report with ranked ones.
type jsonReport struct {
	*schema.ReportData
	Files   []jsonFileResult   `json:"files"`
	Folders []jsonFolderResult `json:"folders"`
}

// writeReportJSON writes the whole report as one JSON document.
func writeReportJSON(w io.Writer, data *schema.ReportData) error {
	out := jsonReport{
		ReportData: data,
		Files:      make([]jsonFileResult, len(data.Files)),
		Folders:    make([]jsonFolderResult, len(data.Folders)),
	}
	for i, f := range data.Files {
		out.Files[i] = jsonFileResult{Rank: i + 1, Label: contract.GetPlainLabel(f.ModeScore), FileResult: f}
	}
	for i, f := range data.Folders {
		out.Folders[i] = jsonFolderResult{Rank: i + 1, Label: contract.GetPlainLabel(f.Score), FolderResult: f}
	}
	return writeJSON(w, out)
}
