package harness

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mixlab/internal/ir"
)

// Scenario defines a mixing scenario: a catalog, authored rules and a
// sequence of attempts with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog lists substance identifiers inline.
	Catalog []string `yaml:"catalog,omitempty"`

	// CatalogFile is a catalog document, relative to the scenario file.
	CatalogFile string `yaml:"catalog_file,omitempty"`

	// Rules lists authored rules inline, in precedence order.
	Rules []RuleEntry `yaml:"rules,omitempty"`

	// RulesFile is an authored rule document, relative to the scenario file.
	// Its rules come before the inline ones.
	RulesFile string `yaml:"rules_file,omitempty"`

	// Steps are the mixing attempts, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the whole trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// RuleEntry is an inline authored rule.
type RuleEntry struct {
	Key    string      `yaml:"key"`
	Record ir.Reaction `yaml:"record"`
}

// Step is one mixing attempt.
type Step struct {
	// Mix lists the reactants placed in the vessel.
	Mix []string `yaml:"mix"`

	// Apparatus lists the apparatus present.
	Apparatus []string `yaml:"apparatus,omitempty"`

	// Temperature is the vessel temperature in °C, if controlled.
	Temperature *int64 `yaml:"temperature,omitempty"`

	// Expect is optional; without it the step only contributes to the trace.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Outcome is resolved, blocked, not_found or invalid.
	Outcome string `yaml:"outcome"`

	// Type is the expected reaction type (subset match).
	Type string `yaml:"type,omitempty"`

	// Product is the expected product (subset match).
	Product string `yaml:"product,omitempty"`

	// Missing is the expected missing apparatus for blocked outcomes.
	Missing []string `yaml:"missing,omitempty"`
}

// Assertion validates the trace or the built table.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, table_size.
	Type string `yaml:"type"`

	// Key is a combination, canonicalized before comparison
	// (trace_contains).
	Key string `yaml:"key,omitempty"`

	// Outcome filters events (trace_contains, trace_count).
	Outcome string `yaml:"outcome,omitempty"`

	// Outcomes is the expected outcome order (trace_order).
	Outcomes []string `yaml:"outcomes,omitempty"`

	// Count is the expected number of events or table entries
	// (trace_count, table_size).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertTableSize     = "table_size"
)

var validOutcomes = []string{"resolved", "blocked", "not_found", OutcomeInvalid}

// LoadScenario reads and parses a scenario YAML file. File references are
// resolved relative to the scenario's directory. Unknown fields are
// rejected so typos surface early.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	base := filepath.Dir(path)
	scenario.CatalogFile = resolvePath(base, scenario.CatalogFile)
	scenario.RulesFile = resolvePath(base, scenario.RulesFile)

	if err := validateScenario(&scenario); err != nil {
		return nil, errors.Wrap(err, "invalid scenario")
	}
	return &scenario, nil
}

// FindScenarios returns the YAML files in dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("steps list is required and must be non-empty")
	}

	for _, p := range []string{s.CatalogFile, s.RulesFile} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return errors.Newf("file not found: %s", p)
		}
	}

	for i, r := range s.Rules {
		if strings.TrimSpace(r.Key) == "" {
			return errors.Newf("rules[%d]: key is required", i)
		}
	}

	for i, step := range s.Steps {
		if len(step.Mix) == 0 {
			return errors.Newf("steps[%d]: mix is required", i)
		}
		if step.Expect != nil && !slices.Contains(validOutcomes, step.Expect.Outcome) {
			return errors.Newf("steps[%d].expect: unknown outcome %q", i, step.Expect.Outcome)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return errors.Newf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Key == "" {
			return errors.Newf("assertions[%d]: key is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Outcomes) == 0 {
			return errors.Newf("assertions[%d]: outcomes list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Outcome == "" {
			return errors.Newf("assertions[%d]: outcome is required for trace_count", index)
		}
		if a.Count < 0 {
			return errors.Newf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTableSize:
		if a.Count < 0 {
			return errors.Newf("assertions[%d]: count must be non-negative for table_size", index)
		}
	default:
		return errors.Newf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
