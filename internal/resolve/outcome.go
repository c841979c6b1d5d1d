package resolve

import (
	"github.com/roach88/mixlab/internal/ir"
)

// Kind classifies a resolution outcome.
type Kind string

const (
	// KindResolved: a rule matched and its prerequisites are met.
	KindResolved Kind = "resolved"
	// KindBlocked: a rule matched but apparatus or temperature is missing.
	// The caller should let the user fix the setup and retry.
	KindBlocked Kind = "blocked"
	// KindNotFound: no rule for the combination. With a table built over
	// a superset catalog this means the catalog and table disagree.
	KindNotFound Kind = "not_found"
)

// TemperatureViolation describes why a temperature gate failed.
type TemperatureViolation struct {
	Actual int64  `json:"actual"`
	Min    *int64 `json:"min,omitempty"`
	Max    *int64 `json:"max,omitempty"`
}

// Outcome is the result of one mixing attempt.
type Outcome struct {
	Kind Kind   `json:"kind"`
	Key  ir.Key `json:"key"`

	// Record is set for resolved and blocked outcomes.
	Record *ir.Reaction `json:"record,omitempty"`

	// Missing lists required apparatus not present, sorted.
	Missing []string `json:"missing,omitempty"`

	// Temperature is set when the temperature gate failed.
	Temperature *TemperatureViolation `json:"temperature,omitempty"`
}

// IsResolved reports whether the reaction can be performed.
func (o Outcome) IsResolved() bool { return o.Kind == KindResolved }

// IsBlocked reports whether a prerequisite is missing.
func (o Outcome) IsBlocked() bool { return o.Kind == KindBlocked }

// IsNotFound reports whether no rule matched.
func (o Outcome) IsNotFound() bool { return o.Kind == KindNotFound }
