package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/mixlab/internal/ir"
)

// TraceSnapshot captures the trace of a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	TableSize    int          `json:"table_size"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization. Empty optional fields are omitted since canonical
// JSON has no null.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"seq":       ev.Seq,
			"reactants": nonNil(ev.Reactants),
			"apparatus": nonNil(ev.Apparatus),
			"outcome":   ev.Outcome,
		}
		if ev.Temperature != nil {
			m["temperature"] = *ev.Temperature
		}
		if ev.Key != "" {
			m["key"] = ev.Key
		}
		if ev.Type != "" {
			m["type"] = ev.Type
		}
		if ev.Product != "" {
			m["product"] = ev.Product
		}
		if len(ev.Missing) > 0 {
			m["missing"] = ev.Missing
		}
		if ev.Error != "" {
			m["error"] = ev.Error
		}
		if len(ev.Suggestions) > 0 {
			sugg := make(map[string]any, len(ev.Suggestions))
			for name, ids := range ev.Suggestions {
				sugg[name] = nonNil(ids)
			}
			m["suggestions"] = sugg
		}
		traceList[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"table_size":    s.TableSize,
		"trace":         traceList,
	}
}

// MarshalTrace renders the canonical JSON form of a result's trace.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		TableSize:    result.TableSize,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
