package schema

// Custom string types for type safety.
type (
	// VariableType represents how a variable's raw value is interpreted.
	VariableType string

	// Decision represents the business outcome attached to a grade or rule.
	Decision string

	// IssueKind represents a data-quality problem found while scoring a variable.
	IssueKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All variable types supported.
const (
	Continuous  VariableType = "continuous" // default
	Categorical VariableType = "categorical"
)

// All decisions supported.
const (
	NoDecision Decision = ""
	Approve    Decision = "approve"
	Review     Decision = "review"
	Decline    Decision = "decline"
)

// All data-quality issue kinds.
const (
	NoIssue         IssueKind = ""
	MissingIssue    IssueKind = "missing"      // field absent or null
	InvalidIssue    IssueKind = "invalid"      // wrong type for the variable
	OutOfRangeIssue IssueKind = "out_of_range" // no band matched the value
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run-store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Scoring defaults.
const (
	DefaultScoreScale    = 100.0
	ExtendedScoreScale   = 1000.0
	DefaultBandIncrement = 1.0
	WeightTotal          = 100.0
	WeightTolerance      = 0.01
	DefaultReasonLimit   = 3
	ScorePrecision       = 2
)

// ValidVariableTypes lists all valid variable types.
var ValidVariableTypes = map[VariableType]struct{}{
	Continuous:  {},
	Categorical: {},
}

// ValidDecisions lists the decisions a band or rule may carry.
var ValidDecisions = map[Decision]struct{}{
	Approve: {},
	Review:  {},
	Decline: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidScoreScales lists the score ranges a scorecard may be built on.
var ValidScoreScales = map[float64]struct{}{
	DefaultScoreScale:  {},
	ExtendedScoreScale: {},
}
