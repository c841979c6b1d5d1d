package harness

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/mixlab/internal/compiler"
	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/loader"
	"github.com/roach88/mixlab/internal/resolve"
	"github.com/roach88/mixlab/internal/suggest"
)

// Harness executes scenarios.
//
// Suggesters are shared by every run over the same identifier set, so
// repeated typos across steps and scenarios are answered from cache.
type Harness struct {
	logger  *zap.SugaredLogger
	metrics *resolve.Metrics

	mu         sync.Mutex
	suggesters map[string]*suggest.Suggester
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to the builder and resolver.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetrics records every step's outcome in m.
func WithMetrics(m *resolve.Metrics) Option {
	return func(h *Harness) { h.metrics = m }
}

// New returns a harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger:     zap.NewNop().Sugar(),
		suggesters: make(map[string]*suggest.Suggester),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a silent logger.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the catalog and authored rules (files first, then inline)
//  2. Validate the authored records; validation errors fail the result
//  3. Build the table
//  4. Resolve every step and check its expect clause
//  5. Evaluate assertions against the trace
//
// An error is returned only when inputs cannot be loaded.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	catalog, err := scenarioCatalog(scenario)
	if err != nil {
		return nil, err
	}
	rules, err := scenarioRules(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for _, verr := range compiler.Validate(rules) {
		result.AddError(verr.Error())
	}

	table, _ := compiler.Build(catalog, rules, compiler.WithLogger(h.logger))
	result.TableSize = table.Len()
	resolver := resolve.New(table, resolve.WithLogger(h.logger), resolve.WithMetrics(h.metrics))
	sugg := h.suggester(table)

	for i, step := range scenario.Steps {
		ev := h.executeStep(resolver, sugg, step, int64(i+1))
		result.AddTrace(ev)
		if step.Expect != nil {
			for _, msg := range checkExpect(ev, step.Expect) {
				result.AddError(fmt.Sprintf("steps[%d]: %s", i, msg))
			}
		}
		h.logger.Debugw("step executed", "step", i, "key", ev.Key, "outcome", ev.Outcome)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// suggester returns the shared suggester for the identifiers of t.
func (h *Harness) suggester(t *ir.Table) *suggest.Suggester {
	ids := t.Identifiers()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	key := strings.Join(parts, "\x00")

	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.suggesters[key]
	if !ok {
		s = suggest.New(ids, suggest.DefaultCacheSize)
		h.suggesters[key] = s
	}
	return s
}

// SuggestionHits returns how many suggestion lookups were served from
// cache across all runs of h.
func (h *Harness) SuggestionHits() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var n int64
	for _, s := range h.suggesters {
		n += s.Hits()
	}
	return n
}

func (h *Harness) executeStep(r *resolve.Resolver, sugg *suggest.Suggester, step Step, seq int64) TraceEvent {
	ev := TraceEvent{
		Seq:         seq,
		Reactants:   nonNil(step.Mix),
		Apparatus:   nonNil(step.Apparatus),
		Temperature: step.Temperature,
	}

	var opts []resolve.AttemptOption
	if step.Temperature != nil {
		opts = append(opts, resolve.AtTemperature(*step.Temperature))
	}
	out, err := r.Resolve(step.Mix, step.Apparatus, opts...)
	if err != nil {
		ev.Outcome = OutcomeInvalid
		ev.Error = err.Error()
		return ev
	}

	ev.Key = out.Key.String()
	ev.Outcome = string(out.Kind)
	ev.Missing = out.Missing
	if out.IsNotFound() {
		ev.Suggestions = sugg.ForReactants(step.Mix)
	}
	if out.Record != nil {
		ev.Type = string(out.Record.Type)
		if out.Record.Product != nil {
			ev.Product = *out.Record.Product
		}
	}
	return ev
}

func checkExpect(ev TraceEvent, want *Expect) []string {
	var errs []string
	if ev.Outcome != want.Outcome {
		errs = append(errs, fmt.Sprintf("expected outcome %s, got %s", want.Outcome, ev.Outcome))
	}
	if want.Type != "" && ir.ParseReactionType(want.Type) != ir.ReactionType(ev.Type) {
		errs = append(errs, fmt.Sprintf("expected type %s, got %s", want.Type, ev.Type))
	}
	if want.Product != "" && want.Product != ev.Product {
		errs = append(errs, fmt.Sprintf("expected product %q, got %q", want.Product, ev.Product))
	}
	if want.Missing != nil {
		exp := resolve.MissingApparatus(want.Missing, nil)
		if !slices.Equal(exp, ev.Missing) {
			errs = append(errs, fmt.Sprintf("expected missing %v, got %v", exp, ev.Missing))
		}
	}
	return errs
}

func scenarioCatalog(s *Scenario) ([]ir.Identifier, error) {
	var ids []ir.Identifier
	if s.CatalogFile != "" {
		cat, err := loader.LoadCatalog(s.CatalogFile)
		if err != nil {
			return nil, errors.Wrap(err, "load catalog")
		}
		ids = append(ids, cat.Identifiers()...)
	}
	for _, c := range s.Catalog {
		ids = append(ids, ir.Identifier(c))
	}
	return ids, nil
}

func scenarioRules(s *Scenario) (ir.RuleSet, error) {
	rules := ir.RuleSet{}
	if s.RulesFile != "" {
		loaded, err := loader.LoadRules(s.RulesFile)
		if err != nil {
			return nil, errors.Wrap(err, "load rules")
		}
		rules = append(rules, loaded...)
	}
	for _, entry := range s.Rules {
		r := entry.Record.Clone()
		loader.NormalizeRecord(&r)
		rules = append(rules, ir.AuthoredRule{RawKey: entry.Key, Reaction: r})
	}
	return rules, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
