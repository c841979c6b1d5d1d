package resolve

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/mixlab/internal/ir"
)

// Arity bounds for a mixing attempt.
const (
	MinReactants = 2
	MaxReactants = 3
)

// ErrInvalidReactants is returned when a combination is not 2 or 3
// distinct, non-empty identifiers.
var ErrInvalidReactants = errors.New("invalid reactants")

// Resolver looks up reactions in an immutable table. It keeps no state
// between calls and is safe for concurrent use.
type Resolver struct {
	table   *ir.Table
	logger  *zap.SugaredLogger
	metrics *Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Not-found lookups are logged at error level.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics enables outcome counters.
func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New returns a resolver over table.
func New(table *ir.Table, opts ...Option) *Resolver {
	r := &Resolver{table: table, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the table the resolver reads from.
func (r *Resolver) Table() *ir.Table { return r.table }

type attempt struct {
	temperature *int64
}

// AttemptOption adjusts a single Resolve call.
type AttemptOption func(*attempt)

// AtTemperature sets the vessel temperature in °C. Records with min_temp
// or max_temp are blocked when it falls outside their range. Without it
// temperature bounds are not checked.
func AtTemperature(celsius int64) AttemptOption {
	return func(a *attempt) { a.temperature = &celsius }
}

// Resolve canonicalizes present, looks the combination up and applies
// prerequisite gating against apparatus.
func (r *Resolver) Resolve(present, apparatus []string, opts ...AttemptOption) (Outcome, error) {
	var at attempt
	for _, opt := range opts {
		opt(&at)
	}

	if err := validateReactants(present); err != nil {
		r.metrics.observe(outcomeInvalid)
		return Outcome{}, err
	}

	key := ir.Canonicalize(present...)
	rec, ok := r.table.Lookup(key)
	if !ok {
		r.metrics.observe(string(KindNotFound))
		r.logger.Errorw("no rule for combination; catalog and table disagree", "key", key.String())
		return Outcome{Kind: KindNotFound, Key: key}, nil
	}

	out := Outcome{Kind: KindResolved, Key: key, Record: &rec}
	if missing := MissingApparatus(rec.EffectiveRequires(), apparatus); len(missing) > 0 {
		out.Kind = KindBlocked
		out.Missing = missing
	}
	if at.temperature != nil {
		if v := checkTemperature(rec, *at.temperature); v != nil {
			out.Kind = KindBlocked
			out.Temperature = v
		}
	}

	r.metrics.observe(string(out.Kind))
	if out.IsBlocked() {
		r.logger.Debugw("reaction blocked", "key", key.String(), "missing", out.Missing)
	}
	return out, nil
}

// MissingApparatus returns the entries of required not present in
// available, compared by identity, de-duplicated and sorted.
func MissingApparatus(required, available []string) []string {
	have := make(map[ir.Identifier]bool, len(available))
	for _, a := range available {
		have[ir.Identifier(a).Normalize()] = true
	}
	var missing []string
	seen := make(map[ir.Identifier]bool)
	for _, req := range required {
		id := ir.Identifier(req).Normalize()
		if id.IsEmpty() || have[id] || seen[id] {
			continue
		}
		seen[id] = true
		missing = append(missing, strings.TrimSpace(req))
	}
	slices.Sort(missing)
	return missing
}

func validateReactants(present []string) error {
	if n := len(present); n < MinReactants || n > MaxReactants {
		return errors.Wrapf(ErrInvalidReactants, "need %d or %d identifiers, got %d", MinReactants, MaxReactants, n)
	}
	seen := make(map[ir.Identifier]bool, len(present))
	for i, p := range present {
		id := ir.Identifier(p)
		if id.IsEmpty() {
			return errors.Wrapf(ErrInvalidReactants, "identifier %d is empty", i+1)
		}
		if id.IsCompound() {
			return errors.Wrapf(ErrInvalidReactants, "identifier %q contains %q", strings.TrimSpace(p), ir.KeySeparator)
		}
		if seen[id.Normalize()] {
			return errors.Wrapf(ErrInvalidReactants, "identifier %q appears more than once", strings.TrimSpace(p))
		}
		seen[id.Normalize()] = true
	}
	return nil
}

func checkTemperature(rec ir.Reaction, t int64) *TemperatureViolation {
	tooCold := rec.MinTemp != nil && t < *rec.MinTemp
	tooHot := rec.MaxTemp != nil && t > *rec.MaxTemp
	if !tooCold && !tooHot {
		return nil
	}
	return &TemperatureViolation{Actual: t, Min: rec.MinTemp, Max: rec.MaxTemp}
}
