package contract

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/jackc/pgx/v5"
)

// Default values for configuration.
const (
	DefaultLookbackDays = 180
	DefaultRecentDays   = 30
	DefaultResultLimit  = 25
	MaxResultLimit      = 1000
	DefaultPrecision    = 1
)

// CacheGranularity defines the time granularity used to align analysis windows,
// so repeated runs within the same hour share a cache entry.
const CacheGranularity = time.Hour

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultExcludes are ignored in every report on top of user excludes.
var DefaultExcludes = []string{
	"Cargo.lock", "go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock", "uv.lock", "Gemfile.lock",
	".min.js", ".min.css",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".mp4", ".mov", ".webm", ".mp3", ".ogg", ".pdf", ".webp",
	".DS_Store",
	"dist/", "build/", "out/", "target/", "bin/", "vendor/", "node_modules/",
}

// Config holds the final, validated runtime configuration.
type Config struct {
	RepoPath    string
	Pattern     string // Glob handed to the repository when asking for current files
	StartTime   time.Time
	EndTime     time.Time
	PathFilter  string
	ResultLimit int
	Workers     int
	Mode        schema.ScoringMode
	Excludes    []string
	Detail      bool
	Explain     bool
	Owner       bool
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	GitBackend schema.GitBackend

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	// CustomWeights is a mapping of [ModeName][BreakdownKey] = Weight from the config file
	CustomWeights map[schema.ScoringMode]map[schema.BreakdownKey]float64

	// ComputedWeights is the final weights map for each mode: defaults + custom overrides
	ComputedWeights map[schema.ScoringMode]map[schema.BreakdownKey]float64
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	Glob           string `mapstructure:"glob"`
	Filter         string `mapstructure:"filter"`
	Exclude        string `mapstructure:"exclude"`
	Limit          int    `mapstructure:"limit"`
	Start          string `mapstructure:"start"`
	End            string `mapstructure:"end"`
	Workers        int    `mapstructure:"workers"`
	Mode           string `mapstructure:"mode"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Owner          bool   `mapstructure:"owner"`
	Detail         bool   `mapstructure:"detail"`
	Explain        bool   `mapstructure:"explain"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	GitBackend     string `mapstructure:"git-backend"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`

	// Weights holds custom scoring weights from the config file: [mode][factor] = weight
	Weights map[string]map[string]float64 `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	clone.CustomWeights = cloneWeights(c.CustomWeights)
	clone.ComputedWeights = cloneWeights(c.ComputedWeights)
	return &clone
}

func cloneWeights(src map[schema.ScoringMode]map[schema.BreakdownKey]float64) map[schema.ScoringMode]map[schema.BreakdownKey]float64 {
	if src == nil {
		return nil
	}
	dst := make(map[schema.ScoringMode]map[schema.BreakdownKey]float64, len(src))
	for mode, modeMap := range src {
		dst[mode] = maps.Clone(modeMap)
	}
	return dst
}

// WeightsFor returns the weights to score a mode with, falling back to the defaults.
func (c *Config) WeightsFor(mode schema.ScoringMode) map[schema.BreakdownKey]float64 {
	if w, ok := c.ComputedWeights[mode]; ok {
		return w
	}
	return schema.GetDefaultWeights(mode)
}

// GetAnalysisStartTime returns the configured start time, truncated to the caching granularity.
func (c *Config) GetAnalysisStartTime() time.Time {
	return c.StartTime.Truncate(CacheGranularity)
}

// GetAnalysisEndTime returns the configured end time, truncated to the caching granularity.
func (c *Config) GetAnalysisEndTime() time.Time {
	return c.EndTime.Truncate(CacheGranularity)
}

// RecentSince returns the start of the "recent activity" window.
func (c *Config) RecentSince() time.Time {
	end := c.GetAnalysisEndTime()
	if end.IsZero() {
		end = time.Now().Truncate(CacheGranularity)
	}
	return end.Add(-DefaultRecentDays * 24 * time.Hour)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	return resolveGitPathAndFilter(ctx, cfg, client, input)
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Pattern = strings.TrimSpace(input.Glob)
	cfg.PathFilter = input.Filter
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Owner = input.Owner
	cfg.Width = input.Width

	colorStr := input.Color
	if colorStr == "" {
		colorStr = "yes"
	}
	colors, err := ParseBoolString(colorStr)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.Mode = schema.ScoringMode(strings.ToLower(input.Mode))
	if _, ok := schema.ValidScoringModes[cfg.Mode]; !ok {
		return fmt.Errorf("invalid mode '%s'. must be hot, risk, complexity, stale", input.Mode)
	}

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.GitBackend = schema.GitBackend(strings.ToLower(input.GitBackend))
	if cfg.GitBackend == "" {
		cfg.GitBackend = schema.CLIGitBackend
	}
	if _, ok := schema.ValidGitBackends[cfg.GitBackend]; !ok {
		return fmt.Errorf("invalid git backend '%s'. must be cli or native", input.GitBackend)
	}

	cfg.Excludes = append([]string{}, DefaultExcludes...)
	if input.Exclude != "" {
		for p := range strings.SplitSeq(input.Exclude, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.Excludes = append(cfg.Excludes, trimmed)
			}
		}
	}

	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
		if _, err := mysql.ParseDSN(connStr); err != nil {
			return fmt.Errorf("invalid MySQL connection string: %w", err)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
		if _, err := pgx.ParseConfig(connStr); err != nil {
			return fmt.Errorf("invalid PostgreSQL connection string: %w", err)
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// Run history is opt-in; an empty backend disables it.
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and run history must use different SQLite database files. Both resolve to %q", cachePath)
		}
	} else if cfg.CacheBackend == cfg.RunsBackend && cfg.CacheBackend != schema.NoneBackend && cfg.CacheDBConnect == cfg.RunsDBConnect {
		return fmt.Errorf("cache-db-connect and runs-db-connect must differ")
	}

	return nil
}

// processTimeRange handles absolute and relative date parsing and time range validation.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	cfg.EndTime = now
	cfg.StartTime = cfg.EndTime.Add(-DefaultLookbackDays * 24 * time.Hour)

	parse := func(s string) (time.Time, error) {
		if t, err := time.Parse(DateTimeFormat, s); err == nil {
			return t, nil
		}
		return ParseRelativeTime(s, now)
	}

	if input.Start != "" {
		t, err := parse(input.Start)
		if err != nil {
			return fmt.Errorf("invalid start date format for '%s'. Expected absolute ISO8601 or 'N [units] ago': %w", input.Start, err)
		}
		cfg.StartTime = t
	}

	if input.End != "" {
		t, err := parse(input.End)
		if err != nil {
			return fmt.Errorf("invalid end date format for '%s'. Expected absolute ISO8601 or 'N [units] ago': %w", input.End, err)
		}
		cfg.EndTime = t
	}

	if cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// validBreakdownKeys lists the factors a custom weight may target.
var validBreakdownKeys = map[schema.BreakdownKey]struct{}{
	schema.BreakdownContrib:    {},
	schema.BreakdownCommits:    {},
	schema.BreakdownLOC:        {},
	schema.BreakdownSize:       {},
	schema.BreakdownAge:        {},
	schema.BreakdownChurn:      {},
	schema.BreakdownGini:       {},
	schema.BreakdownInvContrib: {},
	schema.BreakdownInvRecent:  {},
	schema.BreakdownLowRecent:  {},
}

// ProcessWeightsRawInput converts the raw weights section of the config file into a typed map.
// Weights provided for a mode must be non-negative and sum to 1.0.
func ProcessWeightsRawInput(raw map[string]map[string]float64) (map[schema.ScoringMode]map[schema.BreakdownKey]float64, error) {
	result := make(map[schema.ScoringMode]map[schema.BreakdownKey]float64)

	modes := make([]string, 0, len(raw))
	for m := range raw {
		modes = append(modes, m)
	}
	sort.Strings(modes)

	for _, m := range modes {
		mode := schema.ScoringMode(strings.ToLower(m))
		if _, ok := schema.ValidScoringModes[mode]; !ok {
			return nil, fmt.Errorf("custom weights given for unknown mode '%s'", m)
		}
		if len(raw[m]) == 0 {
			continue
		}

		modeMap := make(map[schema.BreakdownKey]float64, len(raw[m]))
		sum := 0.0
		for k, w := range raw[m] {
			key := schema.BreakdownKey(strings.ToLower(k))
			if _, ok := validBreakdownKeys[key]; !ok {
				return nil, fmt.Errorf("unknown weight factor '%s' for mode %s", k, mode)
			}
			if w < 0 {
				return nil, fmt.Errorf("weight for %s in mode %s cannot be negative", k, mode)
			}
			modeMap[key] = w
			sum += w
		}
		if sum < 0.999 || sum > 1.001 {
			return nil, fmt.Errorf("custom weights for mode %s must sum to 1.0, got %.3f", mode, sum)
		}
		result[mode] = modeMap
	}

	return result, nil
}

// processCustomWeights validates custom weights and computes the final weights for each mode.
// Custom weights for a mode replace that mode's defaults entirely.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	weights, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	cfg.CustomWeights = weights

	cfg.ComputedWeights = make(map[schema.ScoringMode]map[schema.BreakdownKey]float64)
	for _, mode := range schema.AllScoringModes {
		if custom, ok := weights[mode]; ok {
			cfg.ComputedWeights[mode] = maps.Clone(custom)
			continue
		}
		cfg.ComputedWeights[mode] = schema.GetDefaultWeights(mode)
	}
	return nil
}

// resolveGitPathAndFilter resolves the Git repository root and sets the implicit path filter
// when the user points at a sub-directory or file inside the repository.
func resolveGitPathAndFilter(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, statErr := os.Stat(absSearchPath)
	gitContextPath := absSearchPath
	if statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot

	if cfg.PathFilter != "" { // User-provided --filter flag takes precedence
		return nil
	}

	if absSearchPath != gitRoot {
		relativePath, err := filepath.Rel(gitRoot, absSearchPath)
		if err != nil {
			return err
		}
		if relativePath != "." {
			filter := relativePath
			if statErr == nil && info.IsDir() {
				filter += "/"
			}
			cfg.PathFilter = filepath.ToSlash(filter)
		}
	}
	return nil
}
