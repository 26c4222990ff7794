package schema

import "maps"

// Custom string types for type safety.
type (
	// BreakdownKey represents keys used in scoring breakdowns.
	BreakdownKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// ScoringMode represents the scoring mode used.
	ScoringMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// GitBackend represents how Git data is read from a repository.
	GitBackend string
)

// Breakdown keys used in the scoring logic.
const (
	BreakdownContrib BreakdownKey = "contrib" // nContrib
	BreakdownCommits BreakdownKey = "commits" // nCommits
	BreakdownLOC     BreakdownKey = "loc"     // nLOC
	BreakdownSize    BreakdownKey = "size"    // nSize
	BreakdownAge     BreakdownKey = "age"     // nAge
	BreakdownChurn   BreakdownKey = "churn"   // nChurn

	BreakdownGini       BreakdownKey = "gini"        // nGiniRaw
	BreakdownInvContrib BreakdownKey = "inv_contrib" // nInvContrib
	BreakdownInvRecent  BreakdownKey = "inv_recent"  // nInvRecentCommits (used in stale)
	BreakdownLowRecent  BreakdownKey = "low_recent"  // nInvRecentCommits (used in complexity)
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All scoring modes supported.
const (
	HotMode        ScoringMode = "hot" // default
	RiskMode       ScoringMode = "risk"
	ComplexityMode ScoringMode = "complexity"
	StaleMode      ScoringMode = "stale"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All git backends supported.
const (
	CLIGitBackend    GitBackend = "cli" // default
	NativeGitBackend GitBackend = "native"
)

// AllScoringModes returns a list of all supported scoring modes.
var AllScoringModes = []ScoringMode{HotMode, RiskMode, ComplexityMode, StaleMode}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidScoringModes lists all valid scoring modes.
var ValidScoringModes = map[ScoringMode]struct{}{
	HotMode:        {},
	RiskMode:       {},
	ComplexityMode: {},
	StaleMode:      {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidGitBackends lists all valid git backends.
var ValidGitBackends = map[GitBackend]struct{}{
	CLIGitBackend:    {},
	NativeGitBackend: {},
}

// defaultWeights holds the weight of every factor per scoring mode.
// The weights of every mode sum to 1.0.
var defaultWeights = map[ScoringMode]map[BreakdownKey]float64{
	HotMode: {
		BreakdownAge:     0.10,
		BreakdownChurn:   0.40,
		BreakdownCommits: 0.40,
		BreakdownContrib: 0.05,
		BreakdownSize:    0.05,
	},
	RiskMode: {
		BreakdownAge:        0.16,
		BreakdownChurn:      0.06,
		BreakdownCommits:    0.04,
		BreakdownGini:       0.26,
		BreakdownInvContrib: 0.30,
		BreakdownLOC:        0.06,
		BreakdownSize:       0.12,
	},
	ComplexityMode: {
		BreakdownAge:       0.30,
		BreakdownChurn:     0.30,
		BreakdownCommits:   0.10,
		BreakdownLOC:       0.20,
		BreakdownLowRecent: 0.05,
		BreakdownSize:      0.05,
	},
	StaleMode: {
		BreakdownAge:       0.20,
		BreakdownCommits:   0.15,
		BreakdownContrib:   0.05,
		BreakdownInvRecent: 0.35,
		BreakdownSize:      0.25,
	},
}

// GetDefaultWeights returns a copy of the default weights for mode.
// Unknown modes get the hot mode weights.
func GetDefaultWeights(mode ScoringMode) map[BreakdownKey]float64 {
	weights, ok := defaultWeights[mode]
	if !ok {
		weights = defaultWeights[HotMode]
	}
	return maps.Clone(weights)
}
