package constants

// Application identity
const (
	AppName    = "anonimizar"
	AppVersion = "0.2.0"
	EnvPrefix  = "ANONIMIZAR"
)

// Placeholder values used by generalization and suppression.
const (
	// ValueUndetermined marks a field the level selector could not place
	// at any hierarchy level under the threshold. Distinct from the
	// terminal suppression value on purpose: downstream hierarchical
	// processing still tries to rescue these records via other fields.
	ValueUndetermined = "undetermined"

	// ValueUnknown is the terminal suppression level of every hierarchy.
	ValueUnknown = "unknown"

	// MaskChar pads generalized prefixes of geographic codes.
	MaskChar = "*"
)

// Default privacy thresholds. The reference protocol releases data only
// when every group has at least 2 records and 2 distinct sensitive values.
const (
	DefaultMinK = 2
	DefaultMinL = 2
)

// PassCapMultiplier scales the derived iteration bound
// (quasi-identifier count x max hierarchy depth) as a safety margin
// against misconfigured hierarchies.
const PassCapMultiplier = 2

// Default CSV settings
const (
	DefaultCSVDelimiter = ','
)
