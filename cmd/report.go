package cmd

import (
	"context"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/hotspotlabs/hotreport/core/repo"
	"github.com/hotspotlabs/hotreport/core/report"
	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/internal/outwriter"
	"github.com/spf13/cobra"
)

// headerColor styles the progress line printed before a report.
var headerColor = color.New(color.FgCyan)

// reportCmd reports hotspots for the files a repository currently tracks.
var reportCmd = &cobra.Command{
	Use:   "report [repo-path]",
	Short: "Rank the files currently tracked by a repository.",
	Long: `Report code hotspots for the files a Git repository tracks at HEAD.

Files are selected with an optional glob pattern, scored from their Git
activity in the configured time window and ranked from highest to lowest
score. Folders are ranked from the files below them.

The pattern uses glob syntax: '*' stays within a directory, '**' crosses
directories and '{a,b}' picks alternatives. A pattern without '/' is also
matched against the base name, so '*.rb' finds 'lib/models/user.rb'.

Examples:
  # Every tracked file, hot mode
  hotreport report

  # Ruby files only, ranked by knowledge risk
  hotreport report --glob '*.rb' --mode risk

  # Explain the scores and show owners
  hotreport report --glob 'internal/**' --detail --explain --owner

  # Save the report for later
  hotreport report --output json --output-file report.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runReport(rootCtx); err != nil {
			contract.LogFatal("Cannot build report", err)
		}
	},
}

// runReport builds the report request for the validated config and writes its data.
func runReport(ctx context.Context) error {
	start := time.Now()

	repository := repo.NewGitRepository(cfg, contract.NewGitClient(cfg.GitBackend), cacheManager)
	req, err := report.NewHotspotsReportRequest(repository, cfg.Pattern)
	if err != nil {
		return err
	}

	pattern := req.Pattern()
	if pattern == "" {
		pattern = "all files"
	}
	_, _ = headerColor.Fprintf(os.Stderr, "🔎 Reporting %s hotspots in %s (%s)\n", cfg.Mode, cfg.RepoPath, pattern)

	data, err := req.RawData(ctx)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReport(data, cfg, time.Since(start))
}
