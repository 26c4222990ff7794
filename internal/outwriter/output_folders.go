package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeFolderTable writes the ranked folders as a human-readable table.
func writeFolderTable(w io.Writer, folders []schema.FolderResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Folder", "Score", "Label"}
	if cfg.Detail {
		headers = append(headers, "Files", "Commits", "Churn", "LOC", "Contrib")
	}
	if cfg.Owner {
		headers = append(headers, "Owner")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := getMaxTablePathWidth(cfg)
	data := make([][]string, 0, len(folders))
	for i, r := range folders {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(r.Path, pathWidth),
			fmtFloat(r.Score),
			contract.GetColorLabel(r.Score),
		}
		if cfg.Detail {
			row = append(row,
				fmt.Sprintf(intFmt, r.Files),
				fmt.Sprintf(intFmt, r.Commits),
				fmt.Sprintf(intFmt, r.Churn),
				fmt.Sprintf(intFmt, r.LinesOfCode),
				fmt.Sprintf(intFmt, r.UniqueContributors),
			)
		}
		if cfg.Owner {
			row = append(row, schema.FormatOwners(r.Owners))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
