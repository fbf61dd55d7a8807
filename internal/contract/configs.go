package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/scorecard/schema"
)

// Default values for configuration.
const (
	DefaultPrecision   = 2
	MaxPrecision       = 3
	DefaultPreview     = 5
	MaxPreview         = 1000
	DefaultReasonLimit = schema.DefaultReasonLimit

	// UnsetApprovalRate means no --min-approval-rate was given.
	UnsetApprovalRate = -1.0
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the CLI.
// This struct remains the "final, validated" config.
type Config struct {
	ScorecardPath string
	RecordsPath   string
	RecordJSON    string // inline record for evaluate

	Workers         int
	Output          schema.OutputMode
	OutputFile      string
	Precision       int
	Strict          bool
	ApprovedBuckets []string
	ReasonLimit     int
	Preview         int
	Width           int // Terminal width override (0 = auto-detect)
	Excludes        []string

	// MinApprovalRate is nil when the gate should fall back to the
	// scorecard's targetApprovalRate.
	MinApprovalRate *float64

	Backend   schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	MetricsFile string

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	ScorecardPathStr string
	RecordsPathStr   string

	// --- Fields from rootCmd.PersistentFlags() ---
	Workers     int    `mapstructure:"workers"`
	Output      string `mapstructure:"output"`
	OutputFile  string `mapstructure:"output-file"`
	Precision   int    `mapstructure:"precision"`
	Strict      bool   `mapstructure:"strict"`
	Width       int    `mapstructure:"width"`
	Backend     string `mapstructure:"backend"`
	DBConnect   string `mapstructure:"db-connect"`
	MetricsFile string `mapstructure:"metrics-file"`
	Emoji       string `mapstructure:"emoji"`
	Color       string `mapstructure:"color"`

	// --- Fields from evaluate/bulk/check flags ---
	Record          string  `mapstructure:"record"`
	ApprovedBuckets string  `mapstructure:"approved-buckets"`
	ReasonLimit     int     `mapstructure:"reason-limit"`
	Preview         int     `mapstructure:"preview"`
	MinApprovalRate float64 `mapstructure:"min-approval-rate"`

	// --- Fields from listCmd.Flags() ---
	Exclude string `mapstructure:"exclude"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.ApprovedBuckets = slices.Clone(c.ApprovedBuckets)
	clone.Excludes = slices.Clone(c.Excludes)
	if c.MinApprovalRate != nil {
		rate := *c.MinApprovalRate
		clone.MinApprovalRate = &rate
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processBulkInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	return resolveInputPaths(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
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

// validateSimpleInputs processes and validates the output and worker fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Strict = input.Strict
	cfg.Width = input.Width
	cfg.MetricsFile = input.MetricsFile
	cfg.RecordJSON = strings.TrimSpace(input.Record)

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	return nil
}

// processBulkInputs handles the evaluation and gating knobs.
func processBulkInputs(cfg *Config, input *ConfigRawInput) error {
	if input.ReasonLimit < 1 {
		return fmt.Errorf("reason-limit must be at least 1 (received %d)", input.ReasonLimit)
	}
	cfg.ReasonLimit = input.ReasonLimit

	if input.Preview < 0 || input.Preview > MaxPreview {
		return fmt.Errorf("preview must be between 0 and %d (received %d)", MaxPreview, input.Preview)
	}
	cfg.Preview = input.Preview

	cfg.ApprovedBuckets = splitList(input.ApprovedBuckets)
	cfg.Excludes = splitList(input.Exclude)

	cfg.MinApprovalRate = nil
	if input.MinApprovalRate >= 0 {
		if input.MinApprovalRate > 100 {
			return fmt.Errorf("min-approval-rate must be between 0 and 100 (received %.2f)", input.MinApprovalRate)
		}
		rate := input.MinApprovalRate
		cfg.MinApprovalRate = &rate
	}
	return nil
}

// validateBackendConfig validates the run-store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Backend = schema.DatabaseBackend(strings.ToLower(input.Backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.Backend]; !ok {
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", input.Backend)
	}
	cfg.DBConnect = input.DBConnect
	return ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect)
}

// resolveInputPaths makes the positional file arguments absolute and checks they exist.
func resolveInputPaths(cfg *Config, input *ConfigRawInput) error {
	resolve := func(raw, what string) (string, error) {
		if raw == "" || raw == "-" {
			return raw, nil
		}
		abs, err := filepath.Abs(raw)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("cannot read %s %q: %w", what, raw, err)
		}
		return filepath.Clean(abs), nil
	}

	var err error
	if cfg.ScorecardPath, err = resolve(input.ScorecardPathStr, "scorecard"); err != nil {
		return err
	}
	if cfg.RecordsPath, err = resolve(input.RecordsPathStr, "records"); err != nil {
		return err
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// splitList turns "A, B,,C" into [A B C].
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
