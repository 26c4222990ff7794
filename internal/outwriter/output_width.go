package outwriter

import (
	"os"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"golang.org/x/term"
)

// Path column bounds, in characters.
const (
	defaultTermWidth = 80
	minPathWidth     = 15
	maxPathWidth     = 70
)

// getMaxTablePathWidth calculates the maximum width for paths in table output
// based on the terminal width and the optional columns that are enabled.
func getMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detected, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detected <= 0 {
			// Conservative default for pipes and CI
			detected = defaultTermWidth
		}
		termWidth = detected
	}

	baseWidth := 25 // Rank + Score + Label
	if cfg.Detail {
		baseWidth += 55 // Contrib + Commits + LOC + Churn + Age + Gini
	}
	if cfg.Explain {
		baseWidth += 35
	}
	if cfg.Owner {
		baseWidth += 25
	}
	baseWidth += 20 // borders and padding

	return min(max(termWidth-baseWidth, minPathWidth), maxPathWidth)
}
