package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/mixlab/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrUnknownReactionType    = "E201" // type not in the known set
	ErrPlaceholderHasDetails  = "E202" // no-reaction/unknown carries product, color or heat
	ErrPlaceholderObservation = "E203" // no-reaction/unknown needs exactly one observation
	ErrNoObservations         = "E204" // defined reaction without observations
	ErrInvalidColor           = "E205" // color is not #rrggbb
	ErrTemperatureRange       = "E206" // min_temp above max_temp
	ErrEmptyRequirement       = "E207" // blank entry in requires
	ErrNegativeDuration       = "E208" // duration_seconds below zero
)

// ValidationError represents a record validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks every authored record and returns all errors found
// (does not fail-fast). Field paths are prefixed with the raw key.
func Validate(rules ir.RuleSet) []ValidationError {
	var errs []ValidationError
	for _, rule := range rules {
		errs = append(errs, ValidateReaction(rule.RawKey, rule.Reaction)...)
	}
	return errs
}

// ValidateReaction checks a single record.
func ValidateReaction(key string, r ir.Reaction) []ValidationError {
	var errs []ValidationError
	field := func(name string) string { return fmt.Sprintf("%s.%s", key, name) }

	// E201: known type
	if !r.Type.IsValid() {
		errs = append(errs, ValidationError{
			Field:   field("type"),
			Message: fmt.Sprintf("unknown reaction type %q", r.Type),
			Code:    ErrUnknownReactionType,
		})
	}

	if r.Type.IsPlaceholder() {
		// E202: placeholders carry no details
		details := []struct {
			name string
			v    *string
		}{{"product", r.Product}, {"color", r.Color}, {"heat", r.Heat}}
		for _, d := range details {
			if name := d.name; d.v != nil {
				errs = append(errs, ValidationError{
					Field:   field(name),
					Message: fmt.Sprintf("%s must be null for type %q", name, r.Type),
					Code:    ErrPlaceholderHasDetails,
				})
			}
		}
		// E203: exactly one explanatory observation
		if len(r.Observations) != 1 {
			errs = append(errs, ValidationError{
				Field:   field("observations"),
				Message: fmt.Sprintf("type %q requires exactly one observation, got %d", r.Type, len(r.Observations)),
				Code:    ErrPlaceholderObservation,
			})
		}
	} else if r.Type.IsValid() && len(r.Observations) == 0 {
		// E204
		errs = append(errs, ValidationError{
			Field:   field("observations"),
			Message: "at least one observation is required",
			Code:    ErrNoObservations,
		})
	}

	// E205
	if r.Color != nil && !colorPattern.MatchString(*r.Color) {
		errs = append(errs, ValidationError{
			Field:   field("color"),
			Message: fmt.Sprintf("invalid color %q, expected \"#rrggbb\"", *r.Color),
			Code:    ErrInvalidColor,
		})
	}

	// E206
	if r.MinTemp != nil && r.MaxTemp != nil && *r.MinTemp > *r.MaxTemp {
		errs = append(errs, ValidationError{
			Field:   field("min_temp"),
			Message: fmt.Sprintf("min_temp %d exceeds max_temp %d", *r.MinTemp, *r.MaxTemp),
			Code:    ErrTemperatureRange,
		})
	}

	// E207
	for i, req := range r.Requires {
		if strings.TrimSpace(req) == "" {
			errs = append(errs, ValidationError{
				Field:   field(fmt.Sprintf("requires[%d]", i)),
				Message: "apparatus identifier must be non-empty",
				Code:    ErrEmptyRequirement,
			})
		}
	}

	// E208
	if r.DurationSeconds != nil && *r.DurationSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   field("duration_seconds"),
			Message: fmt.Sprintf("duration must not be negative, got %d", *r.DurationSeconds),
			Code:    ErrNegativeDuration,
		})
	}

	return errs
}

// colorPattern matches "#rrggbb".
var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
