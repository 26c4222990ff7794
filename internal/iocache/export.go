package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/internal/parquet"
)

// ExportRuns writes the run history of store to two Parquet files named after
// outputFile: <outputFile>.runs.parquet and <outputFile>.file_scores.parquet.
func ExportRuns(store contract.RunStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run history is disabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no report runs found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total report runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total file records: %d\n", status.TotalFileScores)

	runs, err := store.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve report runs: %w", err)
	}
	scores, err := store.ListFileScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve file scores: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	runRows := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteFile(runsFile, runRows); err != nil {
		return fmt.Errorf("failed to write report runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d report runs to: %s\n", len(runRows), runsFile)

	scoresFile := outputFile + ".file_scores.parquet"
	scoreRows := parquet.ConvertFileScoreRecords(scores)
	if err := parquet.WriteFile(scoresFile, scoreRows); err != nil {
		return fmt.Errorf("failed to write file scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file score records to: %s\n", len(scoreRows), scoresFile)
	return nil
}
