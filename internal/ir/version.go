package ir

// Version constants for the persisted formats.
const (
	// FormatVersion is the semantic version of the table snapshot format.
	FormatVersion = "1.0.0"

	// FormatConstraint is the range of snapshot versions this build reads.
	FormatConstraint = "^1.0.0"

	// ToolVersion is the mixlab version.
	ToolVersion = "0.1.0"
)
