package contract

import (
	"fmt"
	"maps"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/promptgraveyard/graveyard/schema"
)

// Default values for configuration.
const (
	DefaultResultsPath = "data/results.json"
	DefaultPrecision   = 2
	MaxPrecision       = 4
	DefaultRateLimit   = 60 // provider calls per minute
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DateOnlyFormat is the short calendar form accepted for range filters.
var DateOnlyFormat = "2006-01-02"

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// MetricWeightsRaw holds the custom metric weights from the YAML config file.
// Use float64 pointers so absent fields can be told apart from zero.
type MetricWeightsRaw struct {
	SemanticAccuracy *float64 `mapstructure:"semantic_accuracy"`
	Latency          *float64 `mapstructure:"latency"`
	Coherence        *float64 `mapstructure:"coherence"`
	Cost             *float64 `mapstructure:"cost"`
	Creativity       *float64 `mapstructure:"creativity"`
}

// Config holds the runtime configuration for graveyard operations.
// This struct remains the "final, validated" config.
type Config struct {
	ResultsPath string
	StaleAfter  time.Duration

	Page      int
	Limit     int
	SortBy    schema.SortField
	SortOrder schema.SortOrder

	IsZombie *bool
	Severity schema.Severity
	MinScore *float64
	MaxScore *float64
	DateFrom *time.Time
	DateTo   *time.Time
	Provider string

	RecordID        string
	SuggestionIndex int
	Feedback        string

	PromptsPath string
	Workers     int
	Seed        int64
	RateLimit   int

	// MetricWeights is the final weights map, computed from defaults + custom overrides
	MetricWeights map[string]float64

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)

	LedgerBackend   schema.DatabaseBackend
	LedgerDBConnect string // Please use env var as this is plaintext

	RecordsParquet   string
	ResponsesParquet string
	AttemptsParquet  string

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	RecordIDStr    string
	PromptsPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	ResultsPath     string `mapstructure:"results"`
	StaleAfter      string `mapstructure:"stale-after"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Precision       int    `mapstructure:"precision"`
	Width           int    `mapstructure:"width"`
	LedgerBackend   string `mapstructure:"ledger-backend"`
	LedgerDBConnect string `mapstructure:"ledger-db-connect"`
	Emoji           string `mapstructure:"emoji"`
	Color           string `mapstructure:"color"`

	// --- Query fields, also from rootCmd.PersistentFlags() ---
	Page      int    `mapstructure:"page"`
	Limit     int    `mapstructure:"limit"`
	SortBy    string `mapstructure:"sort-by"`
	SortOrder string `mapstructure:"sort-order"`
	Zombie    string `mapstructure:"zombie"`
	Severity  string `mapstructure:"severity"`
	MinScore  string `mapstructure:"min-score"`
	MaxScore  string `mapstructure:"max-score"`
	DateFrom  string `mapstructure:"date-from"`
	DateTo    string `mapstructure:"date-to"`
	Provider  string `mapstructure:"provider"`

	// --- Fields from reviveCmd.Flags() ---
	Suggestion int    `mapstructure:"suggestion"`
	Feedback   string `mapstructure:"feedback"`

	// --- Fields from evaluateCmd.Flags() ---
	Workers   int   `mapstructure:"workers"`
	Seed      int64 `mapstructure:"seed"`
	RateLimit int   `mapstructure:"rate-limit"`

	// --- Fields from exportCmd.Flags() ---
	RecordsFile   string `mapstructure:"records-file"`
	ResponsesFile string `mapstructure:"responses-file"`
	AttemptsFile  string `mapstructure:"attempts-file"`

	// --- Custom metric weights from config file ---
	Weights MetricWeightsRaw `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.IsZombie != nil {
		v := *c.IsZombie
		clone.IsZombie = &v
	}
	if c.MinScore != nil {
		v := *c.MinScore
		clone.MinScore = &v
	}
	if c.MaxScore != nil {
		v := *c.MaxScore
		clone.MaxScore = &v
	}
	if c.DateFrom != nil {
		v := *c.DateFrom
		clone.DateFrom = &v
	}
	if c.DateTo != nil {
		v := *c.DateTo
		clone.DateTo = &v
	}
	if c.MetricWeights != nil {
		clone.MetricWeights = make(map[string]float64, len(c.MetricWeights))
		maps.Copy(clone.MetricWeights, c.MetricWeights)
	}
	return &clone
}

// QueryFilter builds the record filter from the validated config fields.
func (c *Config) QueryFilter() schema.QueryFilter {
	return schema.QueryFilter{
		IsZombie: c.IsZombie,
		Severity: c.Severity,
		MinScore: c.MinScore,
		MaxScore: c.MaxScore,
		DateFrom: c.DateFrom,
		DateTo:   c.DateTo,
		Provider: c.Provider,
	}
}

// QueryOptions builds the pagination and sort options from the validated config fields.
func (c *Config) QueryOptions() schema.QueryOptions {
	return schema.QueryOptions{
		Page:      c.Page,
		Limit:     c.Limit,
		SortBy:    c.SortBy,
		SortOrder: c.SortOrder,
	}
}

// RevalidateQuery re-checks the query fields of a config after per-request
// overrides. MCP handlers mutate a cloned config with raw client arguments,
// so the pagination, sort and filter rules from the flag pipeline apply again.
func RevalidateQuery(cfg *Config) error {
	if cfg.Page < 1 {
		return fmt.Errorf("page must be greater than 0 (received %d)", cfg.Page)
	}
	if cfg.Limit <= 0 || cfg.Limit > schema.MaxLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", schema.MaxLimit, cfg.Limit)
	}
	if _, ok := schema.ValidSortFields[cfg.SortBy]; !ok {
		return fmt.Errorf("invalid sort field '%s'. must be timestamp, score, cost, latency", cfg.SortBy)
	}
	if _, ok := schema.ValidSortOrders[cfg.SortOrder]; !ok {
		return fmt.Errorf("invalid sort order '%s'. must be asc, desc", cfg.SortOrder)
	}
	if cfg.Severity != "" {
		if _, ok := schema.ValidSeverities[cfg.Severity]; !ok {
			return fmt.Errorf("invalid severity '%s'. must be alive, shambling, rotting, skeletal", cfg.Severity)
		}
	}
	if cfg.MinScore != nil && (*cfg.MinScore < 0 || *cfg.MinScore > 1) {
		return fmt.Errorf("min_score must be between 0.0 and 1.0 (received %.2f)", *cfg.MinScore)
	}
	if cfg.MaxScore != nil && (*cfg.MaxScore < 0 || *cfg.MaxScore > 1) {
		return fmt.Errorf("max_score must be between 0.0 and 1.0 (received %.2f)", *cfg.MaxScore)
	}
	if cfg.MinScore != nil && cfg.MaxScore != nil && *cfg.MinScore > *cfg.MaxScore {
		return fmt.Errorf("min_score (%.2f) cannot be greater than max_score (%.2f)", *cfg.MinScore, *cfg.MaxScore)
	}
	return nil
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processQueryInputs(cfg, input); err != nil {
		return err
	}
	if err := processRevivalInputs(cfg, input); err != nil {
		return err
	}
	if err := processEvalInputs(cfg, input); err != nil {
		return err
	}
	if err := processMetricWeights(cfg, input); err != nil {
		return err
	}
	if err := resolveResultsPath(cfg, input); err != nil {
		return err
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
			return fmt.Errorf("ledger-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("ledger-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-query fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.RecordsParquet = input.RecordsFile
	cfg.ResponsesParquet = input.ResponsesFile
	cfg.AttemptsParquet = input.AttemptsFile

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- 2. Staleness Window Validation ---
	cfg.StaleAfter = schema.DefaultStaleAfter
	if input.StaleAfter != "" {
		staleAfter, err := ParseLookbackDuration(input.StaleAfter)
		if err != nil {
			return fmt.Errorf("invalid --stale-after value: %w", err)
		}
		cfg.StaleAfter = staleAfter
	}

	// --- 3. Ledger Backend Validation ---
	cfg.LedgerBackend = schema.DatabaseBackend(strings.ToLower(input.LedgerBackend))
	if _, ok := schema.ValidLedgerBackends[cfg.LedgerBackend]; !ok {
		return fmt.Errorf("invalid ledger backend '%s'. must be sqlite, mysql, postgresql, none", input.LedgerBackend)
	}
	cfg.LedgerDBConnect = input.LedgerDBConnect
	if err := ValidateDatabaseConnectionString(cfg.LedgerBackend, cfg.LedgerDBConnect); err != nil {
		return err
	}

	return nil
}

// processQueryInputs handles pagination, sorting and the record filters.
func processQueryInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Pagination Validation ---
	if input.Page < 1 {
		return fmt.Errorf("page must be greater than 0 (received %d)", input.Page)
	}
	cfg.Page = input.Page

	if input.Limit <= 0 || input.Limit > schema.MaxLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", schema.MaxLimit, input.Limit)
	}
	cfg.Limit = input.Limit

	// --- 2. Sort Validation ---
	cfg.SortBy = schema.SortField(strings.ToLower(input.SortBy))
	if _, ok := schema.ValidSortFields[cfg.SortBy]; !ok {
		return fmt.Errorf("invalid sort field '%s'. must be timestamp, score, cost, latency", input.SortBy)
	}

	cfg.SortOrder = schema.SortOrder(strings.ToLower(input.SortOrder))
	if _, ok := schema.ValidSortOrders[cfg.SortOrder]; !ok {
		return fmt.Errorf("invalid sort order '%s'. must be asc, desc", input.SortOrder)
	}

	// --- 3. Zombie and Severity Filters ---
	if input.Zombie != "" {
		zombie, err := ParseBoolString(input.Zombie)
		if err != nil {
			return fmt.Errorf("invalid --zombie value: %w", err)
		}
		cfg.IsZombie = &zombie
	}

	cfg.Severity = schema.Severity(strings.ToLower(input.Severity))
	if cfg.Severity != "" {
		if _, ok := schema.ValidSeverities[cfg.Severity]; !ok {
			return fmt.Errorf("invalid severity '%s'. must be alive, shambling, rotting, skeletal", input.Severity)
		}
	}

	// --- 4. Score Range Filters ---
	if input.MinScore != "" {
		minScore, err := parseScoreBound("min-score", input.MinScore)
		if err != nil {
			return err
		}
		cfg.MinScore = &minScore
	}
	if input.MaxScore != "" {
		maxScore, err := parseScoreBound("max-score", input.MaxScore)
		if err != nil {
			return err
		}
		cfg.MaxScore = &maxScore
	}
	if cfg.MinScore != nil && cfg.MaxScore != nil && *cfg.MinScore > *cfg.MaxScore {
		return fmt.Errorf("min-score (%.2f) cannot be greater than max-score (%.2f)", *cfg.MinScore, *cfg.MaxScore)
	}

	// --- 5. Date Range Filters ---
	now := time.Now()

	parseAbsolute := func(s string) (time.Time, error) {
		if t, err := time.Parse(DateTimeFormat, s); err == nil {
			return t, nil
		}
		return time.Parse(DateOnlyFormat, s)
	}

	if input.DateFrom != "" {
		t, err := parseAbsolute(input.DateFrom)
		if err != nil {
			t, relErr := ParseRelativeTime(input.DateFrom, now)
			if relErr != nil {
				return fmt.Errorf("invalid date-from format for '%s'. Expected absolute ISO8601, YYYY-MM-DD, or 'N [units] ago': %v", input.DateFrom, err)
			}
			cfg.DateFrom = &t
		} else {
			cfg.DateFrom = &t
		}
	}

	if input.DateTo != "" {
		t, err := parseAbsolute(input.DateTo)
		if err != nil {
			t, relErr := ParseRelativeTime(input.DateTo, now)
			if relErr != nil {
				return fmt.Errorf("invalid date-to format for '%s'. Expected absolute ISO8601, YYYY-MM-DD, or 'N [units] ago': %v", input.DateTo, err)
			}
			cfg.DateTo = &t
		} else {
			cfg.DateTo = &t
		}
	}

	if cfg.DateFrom != nil && cfg.DateTo != nil && cfg.DateFrom.After(*cfg.DateTo) {
		return fmt.Errorf("date-from (%s) cannot be after date-to (%s)", cfg.DateFrom.Format(DateTimeFormat), cfg.DateTo.Format(DateTimeFormat))
	}

	// --- 6. Provider Filter ---
	cfg.Provider = strings.TrimSpace(input.Provider)

	return nil
}

// processRevivalInputs handles the revive command inputs.
func processRevivalInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.RecordID = strings.TrimSpace(input.RecordIDStr)

	if input.Suggestion < 0 {
		return fmt.Errorf("suggestion index cannot be negative (received %d)", input.Suggestion)
	}
	cfg.SuggestionIndex = input.Suggestion

	cfg.Feedback = strings.TrimSpace(input.Feedback)

	return nil
}

// processEvalInputs handles the evaluate command inputs.
func processEvalInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.PromptsPath = strings.TrimSpace(input.PromptsPathStr)

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.RateLimit <= 0 {
		return fmt.Errorf("rate-limit must be greater than 0 (received %d)", input.RateLimit)
	}
	cfg.RateLimit = input.RateLimit

	cfg.Seed = input.Seed

	return nil
}

// processMetricWeights merges the custom weights from the config file over the
// defaults and validates the merged set.
func processMetricWeights(cfg *Config, input *ConfigRawInput) error {
	weights := schema.GetDefaultMetricWeights()

	raw := input.Weights
	if raw.SemanticAccuracy != nil {
		weights[schema.MetricSemanticAccuracy] = *raw.SemanticAccuracy
	}
	if raw.Latency != nil {
		weights[schema.MetricLatency] = *raw.Latency
	}
	if raw.Coherence != nil {
		weights[schema.MetricCoherence] = *raw.Coherence
	}
	if raw.Cost != nil {
		weights[schema.MetricCost] = *raw.Cost
	}
	if raw.Creativity != nil {
		weights[schema.MetricCreativity] = *raw.Creativity
	}

	sum := 0.0
	for name, weight := range weights {
		if weight < 0 {
			return fmt.Errorf("metric weight for %s cannot be negative (received %.3f)", name, weight)
		}
		sum += weight
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("metric weights must sum to 1.0, got %.3f", sum)
	}

	cfg.MetricWeights = weights
	return nil
}

// parseScoreBound parses a score filter bound and checks the [0, 1] range.
func parseScoreBound(name, value string) (float64, error) {
	score, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value '%s': %w", name, value, err)
	}
	if score < 0 || score > 1 {
		return 0, fmt.Errorf("%s must be between 0.0 and 1.0 (received %.2f)", name, score)
	}
	return score, nil
}

// resolveResultsPath resolves the record log path to an absolute path.
// The log is allowed to not exist yet; a missing log reads as empty.
func resolveResultsPath(cfg *Config, input *ConfigRawInput) error {
	resultsPath := strings.TrimSpace(input.ResultsPath)
	if resultsPath == "" {
		resultsPath = DefaultResultsPath
	}

	absPath, err := filepath.Abs(resultsPath)
	if err != nil {
		return fmt.Errorf("cannot resolve results path '%s': %w", resultsPath, err)
	}
	cfg.ResultsPath = filepath.Clean(absPath)

	return nil
}
