package ir

import (
	"fmt"
	"strings"
)

// ReactionType classifies a reaction record.
type ReactionType string

const (
	TypeNeutralization ReactionType = "neutralization"
	TypePrecipitation  ReactionType = "precipitation"
	TypeRedox          ReactionType = "redox"
	TypeIndicator      ReactionType = "indicator"
	TypeNoReaction     ReactionType = "no-reaction"
	TypeUnknown        ReactionType = "unknown"
)

// ValidReactionTypes defines the allowed reaction types.
var ValidReactionTypes = map[ReactionType]bool{
	TypeNeutralization: true,
	TypePrecipitation:  true,
	TypeRedox:          true,
	TypeIndicator:      true,
	TypeNoReaction:     true,
	TypeUnknown:        true,
}

// legacyTypes maps spellings found in older rule documents.
var legacyTypes = map[string]ReactionType{
	"no reaction": TypeNoReaction,
	"no_reaction": TypeNoReaction,
	"noreaction":  TypeNoReaction,
}

// ParseReactionType normalizes a type string. Unknown spellings are
// returned unchanged (lower-cased) so validation can report them.
func ParseReactionType(s string) ReactionType {
	v := strings.ToLower(strings.TrimSpace(s))
	if t, ok := legacyTypes[v]; ok {
		return t
	}
	return ReactionType(v)
}

// IsValid reports whether t is one of the known reaction types.
func (t ReactionType) IsValid() bool { return ValidReactionTypes[t] }

// IsPlaceholder reports whether t denotes the absence of a reaction.
func (t ReactionType) IsPlaceholder() bool {
	return t == TypeNoReaction || t == TypeUnknown
}

// UnmarshalText accepts legacy spellings such as "no reaction".
func (t *ReactionType) UnmarshalText(text []byte) error {
	*t = ParseReactionType(string(text))
	return nil
}

// PlaceholderObservation is the single observation carried by generated defaults.
const PlaceholderObservation = "No reaction rule defined for this combination."

// Apparatus identifiers with built-in meaning.
const (
	ApparatusStirrer = "stirrer"
	ApparatusBurner  = "burner"
)

// Reaction is the record resolved for a combination of identifiers.
// Absent optionals encode as JSON null, matching the persisted document.
type Reaction struct {
	Product         *string      `json:"product" yaml:"product"`
	Color           *string      `json:"color" yaml:"color"`
	Type            ReactionType `json:"type" yaml:"type"`
	Heat            *string      `json:"heat" yaml:"heat"`
	Observations    []string     `json:"observations" yaml:"observations"`
	Requires        []string     `json:"requires" yaml:"requires"`
	MinTemp         *int64       `json:"min_temp,omitempty" yaml:"min_temp,omitempty"`
	MaxTemp         *int64       `json:"max_temp,omitempty" yaml:"max_temp,omitempty"`
	DurationSeconds *int64       `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
}

// Placeholder returns the default record generated for combinations with
// no authored rule.
func Placeholder() Reaction {
	return Reaction{
		Type:         TypeUnknown,
		Observations: []string{PlaceholderObservation},
		Requires:     []string{},
	}
}

// IsPlaceholder reports whether the record describes no reaction.
func (r Reaction) IsPlaceholder() bool {
	return r.Type.IsPlaceholder()
}

// IsEndothermic reports whether the heat tag mentions endothermic behaviour.
func (r Reaction) IsEndothermic() bool {
	return r.Heat != nil && strings.Contains(strings.ToLower(*r.Heat), "endothermic")
}

// EffectiveRequires returns the apparatus that must be present, including
// the burner implied by an endothermic reaction.
func (r Reaction) EffectiveRequires() []string {
	reqs := make([]string, 0, len(r.Requires)+1)
	hasBurner := false
	for _, req := range r.Requires {
		if strings.TrimSpace(req) == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(req), ApparatusBurner) {
			hasBurner = true
		}
		reqs = append(reqs, strings.TrimSpace(req))
	}
	if r.IsEndothermic() && !hasBurner {
		reqs = append(reqs, ApparatusBurner)
	}
	return reqs
}

// Clone returns a deep copy so callers cannot mutate a shared table entry.
func (r Reaction) Clone() Reaction {
	out := r
	out.Product = cloneString(r.Product)
	out.Color = cloneString(r.Color)
	out.Heat = cloneString(r.Heat)
	out.MinTemp = cloneInt(r.MinTemp)
	out.MaxTemp = cloneInt(r.MaxTemp)
	out.DurationSeconds = cloneInt(r.DurationSeconds)
	if r.Observations != nil {
		out.Observations = append([]string(nil), r.Observations...)
	}
	if r.Requires != nil {
		out.Requires = append([]string(nil), r.Requires...)
	}
	return out
}

// RequirementHint summarizes the preconditions of a record, e.g.
// " (Requirements: stirrer required, min 40°C)". Empty when none apply.
func (r Reaction) RequirementHint() string {
	var parts []string
	for _, req := range r.Requires {
		if strings.TrimSpace(req) != "" {
			parts = append(parts, strings.TrimSpace(req)+" required")
		}
	}
	if r.MinTemp != nil {
		parts = append(parts, fmt.Sprintf("min %d°C", *r.MinTemp))
	}
	if r.MaxTemp != nil {
		parts = append(parts, fmt.Sprintf("max %d°C", *r.MaxTemp))
	}
	if r.DurationSeconds != nil && *r.DurationSeconds > 0 {
		parts = append(parts, fmt.Sprintf("~%ds", *r.DurationSeconds))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (Requirements: " + strings.Join(parts, ", ") + ")"
}

// FormatEquation renders "A + B → product". Empty when either side is empty.
func FormatEquation(reactants []string, product *string) string {
	var left []string
	for _, r := range reactants {
		if s := strings.TrimSpace(r); s != "" {
			left = append(left, s)
		}
	}
	if len(left) == 0 || product == nil || strings.TrimSpace(*product) == "" {
		return ""
	}
	return strings.Join(left, " + ") + " → " + strings.TrimSpace(*product)
}

// Str returns a pointer to s, for building records in code and tests.
func Str(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int64) *int64 { return &n }

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
