package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/mixlab/internal/ir"
	"github.com/roach88/mixlab/internal/resolve"
)

func TestRun_Precipitation(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/precipitation.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 4, result.TableSize)
	require.Len(t, result.Trace, 5)

	assert.Equal(t, "blocked", result.Trace[0].Outcome)
	assert.Equal(t, []string{"stirrer"}, result.Trace[0].Missing)
	assert.Equal(t, "resolved", result.Trace[1].Outcome)
	assert.Equal(t, OutcomeInvalid, result.Trace[4].Outcome)
	assert.NotEmpty(t, result.Trace[4].Error)
	assert.Empty(t, result.Trace[4].Key)
}

func TestRun_ExpectMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:    "mismatch",
		Catalog: []string{"HCl", "NaOH"},
		Steps: []Step{
			{Mix: []string{"HCl", "NaOH"}, Expect: &Expect{Outcome: "blocked", Type: "neutralization", Product: "salt"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "steps[0]: expected outcome blocked, got resolved", result.Errors[0])
	assert.Equal(t, "steps[0]: expected type neutralization, got unknown", result.Errors[1])
	assert.Equal(t, `steps[0]: expected product "salt", got ""`, result.Errors[2])
}

func TestRun_ExpectMissingNormalized(t *testing.T) {
	scenario := &Scenario{
		Name:    "missing",
		Catalog: []string{"A", "B"},
		Rules: []RuleEntry{{
			Key: "A+B",
			Record: ir.Reaction{
				Type:         ir.TypeRedox,
				Heat:         ir.Str("endothermic"),
				Observations: []string{"warms"},
				Requires:     []string{"stirrer"},
			},
		}},
		Steps: []Step{
			{Mix: []string{"B", "A"}, Expect: &Expect{Outcome: "blocked", Missing: []string{"stirrer", "burner", "stirrer"}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"burner", "stirrer"}, result.Trace[0].Missing)
}

func TestRun_ValidationErrorsFail(t *testing.T) {
	scenario := &Scenario{
		Name:    "invalid rule",
		Catalog: []string{"A", "B"},
		Rules: []RuleEntry{{
			Key:    "A+B",
			Record: ir.Reaction{Type: "explosion", Observations: []string{"boom"}},
		}},
		Steps: []Step{{Mix: []string{"A", "B"}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "E201")
}

func TestRun_LegacyTypeNormalized(t *testing.T) {
	scenario := &Scenario{
		Name:    "legacy",
		Catalog: []string{"A", "B"},
		Rules: []RuleEntry{{
			Key:    "A+B",
			Record: ir.Reaction{Type: "no reaction", Observations: []string{"Nothing happens."}},
		}},
		Steps: []Step{{Mix: []string{"A", "B"}, Expect: &Expect{Outcome: "resolved", Type: "no_reaction"}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, string(ir.TypeNoReaction), result.Trace[0].Type)
}

func TestRun_FromFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chemicals.json"),
		[]byte(`{"chemicals":[{"id":"acid","formula":"HCl"},{"id":"base","formula":"NaOH"},{"id":"ind","name":"Litmus"}]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reactions.json"), []byte(`{
  "HCl+NaOH": {"product":"NaCl + H2O","color":"#ffffff","type":"neutralization","heat":"exothermic","observations":["warms"],"requires":[]}
}`), 0644))
	path := writeScenario(t, dir, `
name: files
description: "catalog and rules from files, inline rule overrides"
catalog_file: chemicals.json
rules_file: reactions.json
rules:
  - key: NaOH+HCl
    record:
      product: "salt water"
      type: neutralization
      observations: ["fizz"]
steps:
  - mix: [NaOH, HCl]
    expect:
      outcome: resolved
      product: "salt water"
  - mix: [NaOH, HCl, Litmus]
    expect:
      outcome: resolved
      type: unknown
assertions:
  - type: table_size
    count: 4
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_MissingRulesFile(t *testing.T) {
	scenario := &Scenario{
		Name:      "missing",
		RulesFile: filepath.Join(t.TempDir(), "gone.json"),
		Steps:     []Step{{Mix: []string{"A", "B"}}},
	}
	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load rules")
}

func TestRun_LogsSteps(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := New(WithLogger(zap.New(core).Sugar()))

	_, err := h.Run(&Scenario{
		Name:    "logged",
		Catalog: []string{"A", "B"},
		Steps:   []Step{{Mix: []string{"A", "B"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("step executed").Len())
}

func TestRun_RecordsMetrics(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/precipitation.yaml")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	result, err := New(WithMetrics(resolve.NewMetrics(reg))).Run(scenario)
	require.NoError(t, err)

	want := make(map[string]float64)
	for _, ev := range result.Trace {
		want[ev.Outcome]++
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	got := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != resolve.OutcomesMetric {
			continue
		}
		for _, m := range mf.GetMetric() {
			got[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, want, got)
}

func TestRun_NotFoundCarriesSuggestions(t *testing.T) {
	scenario := &Scenario{
		Name:    "typos",
		Catalog: []string{"HCl", "NaOH"},
		Rules: []RuleEntry{{
			Key:    "HCl+NaOH",
			Record: ir.Reaction{Type: ir.TypeNeutralization, Observations: []string{"warms"}},
		}},
		Steps: []Step{
			{Mix: []string{"HCl", "NaOHH"}},
			{Mix: []string{"NaOHH", "HCl"}},
			{Mix: []string{"HCl", "Xenon"}},
		},
	}

	h := New()
	result, err := h.Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Trace, 3)

	assert.Equal(t, "not_found", result.Trace[0].Outcome)
	assert.Equal(t, map[string][]string{"NaOHH": {"NAOH"}}, result.Trace[0].Suggestions)
	assert.Equal(t, result.Trace[0].Suggestions, result.Trace[1].Suggestions)
	assert.Equal(t, map[string][]string{"Xenon": {}}, result.Trace[2].Suggestions)
	assert.Equal(t, int64(1), h.SuggestionHits())

	_, err = h.Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, int64(4), h.SuggestionHits())
}

func TestMarshalTrace_Suggestions(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{
		Seq:         1,
		Reactants:   []string{"HCl", "Xe"},
		Key:         "HCL+XE",
		Outcome:     "not_found",
		Suggestions: map[string][]string{"Xe": nil},
	})

	data, err := MarshalTrace("s", result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"suggestions":{"Xe":[]}`)
}
