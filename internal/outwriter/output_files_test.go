package outwriter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFiles() []schema.FileResult {
	return []schema.FileResult{
		{
			Path:               "lib/a.rb",
			ModeScore:          85.5,
			UniqueContributors: 2,
			Commits:            2,
			RecentCommits:      1,
			SizeBytes:          2048,
			AgeDays:            143,
			Churn:              70,
			Gini:               0.25,
			LinesOfCode:        40,
			FirstCommit:        time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			Owners:             []string{"Alice Smith", "Bob Jones"},
			Mode:               schema.HotMode,
			ModeBreakdown: map[schema.BreakdownKey]float64{
				schema.BreakdownCommits: 40,
				schema.BreakdownChurn:   30,
			},
		},
		{
			Path:      "lib/b.rb",
			ModeScore: 12,
			Commits:   1,
			Churn:     12,
			Mode:      schema.HotMode,
		},
	}
}

func TestWriteFileCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)

	var buf bytes.Buffer
	require.NoError(t, writeFileCSV(&buf, sampleFiles(), fmtFloat, intFmt))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, fileCSVHeader, records[0])
	assert.Equal(t, []string{
		"1", "lib/a.rb", "85.50", "Critical", "2", "2", "1", "40", "2.00", "143", "70", "0.25",
		"2025-09-01T00:00:00Z", "Alice Smith|Bob Jones", "hot",
	}, records[1])

	// Zero first commit and no owners render as empty cells
	assert.Equal(t, "", records[2][12])
	assert.Equal(t, "", records[2][13])
	assert.Equal(t, "Low", records[2][3])
}

func TestWriteFileCSV_Empty(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)

	var buf bytes.Buffer
	require.NoError(t, writeFileCSV(&buf, nil, fmtFloat, intFmt))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "rank,file,score"))
}

func TestWriteFileTable(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	cfg := &contract.Config{Width: 200, Detail: true, Explain: true, Owner: true}

	var buf bytes.Buffer
	require.NoError(t, writeFileTable(&buf, sampleFiles(), cfg, fmtFloat, intFmt))

	out := buf.String()
	upper := strings.ToUpper(out)
	for _, header := range []string{"RANK", "PATH", "SCORE", "LABEL", "CONTRIB", "GINI", "EXPLAIN", "OWNER"} {
		assert.Contains(t, upper, header)
	}
	assert.Contains(t, out, "lib/a.rb")
	assert.Contains(t, out, "85.5")
	assert.Contains(t, out, "Critical")
	assert.Contains(t, out, "Alice S, Bob J")
	assert.Contains(t, out, "lib/b.rb")
}

func TestWriteFileTable_MinimalColumns(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	cfg := &contract.Config{Width: 120}

	var buf bytes.Buffer
	require.NoError(t, writeFileTable(&buf, sampleFiles(), cfg, fmtFloat, intFmt))

	upper := strings.ToUpper(buf.String())
	assert.NotContains(t, upper, "GINI")
	assert.NotContains(t, upper, "OWNER")
	assert.NotContains(t, upper, "EXPLAIN")
}

func TestWriteFolderTable(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	folders := []schema.FolderResult{
		{Path: "lib", Files: 2, Commits: 3, Churn: 82, LinesOfCode: 49, UniqueContributors: 2, Owners: []string{"Alice Smith"}, Score: 64.2},
	}
	cfg := &contract.Config{Width: 200, Detail: true, Owner: true}

	var buf bytes.Buffer
	require.NoError(t, writeFolderTable(&buf, folders, cfg, fmtFloat, intFmt))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "FOLDER")
	assert.Contains(t, out, "lib")
	assert.Contains(t, out, "64.2")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "82")
	assert.Contains(t, out, "Alice S")
}
