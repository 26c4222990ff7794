package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// fileCSVHeader is the header row of the CSV output.
var fileCSVHeader = []string{
	"rank",
	"file",
	"score",
	"label",
	"contributors",
	"commits",
	"recent_commits",
	"lines_of_code",
	"size_kb",
	"age_days",
	"churn",
	"gini",
	"first_commit",
	"owner",
	"mode",
}

// writeFileTable writes the ranked files as a human-readable table.
func writeFileTable(w io.Writer, files []schema.FileResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Path", "Score", "Label"}
	if cfg.Detail {
		headers = append(headers, "Contrib", "Commits", "LOC", "Churn", "Age", "Gini")
	}
	if cfg.Explain {
		headers = append(headers, "Explain")
	}
	if cfg.Owner {
		headers = append(headers, "Owner")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := getMaxTablePathWidth(cfg)
	data := make([][]string, 0, len(files))
	for i, f := range files {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, pathWidth),
			fmtFloat(f.ModeScore),
			contract.GetColorLabel(f.ModeScore),
		}
		if cfg.Detail {
			row = append(row,
				fmt.Sprintf(intFmt, f.UniqueContributors),
				fmt.Sprintf(intFmt, f.Commits),
				fmt.Sprintf(intFmt, f.LinesOfCode),
				fmt.Sprintf(intFmt, f.Churn),
				fmt.Sprintf(intFmt, f.AgeDays),
				fmtFloat(f.Gini),
			)
		}
		if cfg.Explain {
			row = append(row, formatTopBreakdown(&f))
		}
		if cfg.Owner {
			row = append(row, schema.FormatOwners(f.Owners))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeFileCSV writes the ranked files in CSV format.
func writeFileCSV(w io.Writer, files []schema.FileResult, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, fileCSVHeader, func(cw *csv.Writer) error {
		for i, f := range files {
			firstCommit := ""
			if !f.FirstCommit.IsZero() {
				firstCommit = f.FirstCommit.Format(contract.DateTimeFormat)
			}
			rec := []string{
				strconv.Itoa(i + 1),
				f.Path,
				fmtFloat(f.ModeScore),
				contract.GetPlainLabel(f.ModeScore),
				fmt.Sprintf(intFmt, f.UniqueContributors),
				fmt.Sprintf(intFmt, f.Commits),
				fmt.Sprintf(intFmt, f.RecentCommits),
				fmt.Sprintf(intFmt, f.LinesOfCode),
				fmtFloat(float64(f.SizeBytes) / 1024.0),
				fmt.Sprintf(intFmt, f.AgeDays),
				fmt.Sprintf(intFmt, f.Churn),
				fmtFloat(f.Gini),
				firstCommit,
				strings.Join(f.Owners, "|"),
				string(f.Mode),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
