package resolve

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/mixlab/internal/compiler"
	"github.com/roach88/mixlab/internal/ir"
	fixtures "github.com/roach88/mixlab/internal/testutil"
)

func TestResolveStirrerGating(t *testing.T) {
	r := New(fixtures.Table())

	blocked, err := r.Resolve([]string{"CuSO4", "NaOH"}, nil)
	require.NoError(t, err)
	assert.Equal(t, KindBlocked, blocked.Kind)
	assert.Equal(t, []string{"stirrer"}, blocked.Missing)
	require.NotNil(t, blocked.Record)

	resolved, err := r.Resolve([]string{"NaOH", "CuSO4"}, []string{"stirrer"})
	require.NoError(t, err)
	assert.Equal(t, KindResolved, resolved.Kind)
	require.NotNil(t, resolved.Record)
	assert.Equal(t, ir.TypePrecipitation, resolved.Record.Type)
	assert.Empty(t, resolved.Missing)
}

func TestResolveApparatusComparedByIdentity(t *testing.T) {
	r := New(fixtures.Table())
	out, err := r.Resolve([]string{"cuso4", "naoh"}, []string{" Stirrer "})
	require.NoError(t, err)
	assert.True(t, out.IsResolved())
}

func TestResolveNoRequirements(t *testing.T) {
	r := New(fixtures.Table())
	out, err := r.Resolve([]string{"HCl", "NaOH"}, nil)
	require.NoError(t, err)
	assert.True(t, out.IsResolved())
	assert.Equal(t, fixtures.Neutralization(), *out.Record)
	assert.Equal(t, "HCL+NAOH", out.Key.String())
}

func TestResolvePlaceholderTriple(t *testing.T) {
	table, _ := compiler.Build([]ir.Identifier{"HCl", "NaOH", "Litmus"}, nil)
	out, err := New(table).Resolve([]string{"HCl", "NaOH", "Litmus"}, nil)
	require.NoError(t, err)
	assert.True(t, out.IsResolved())
	assert.Contains(t, []ir.ReactionType{ir.TypeUnknown, ir.TypeNoReaction}, out.Record.Type)
	assert.Len(t, out.Record.Observations, 1)
}

func TestResolveEndothermicNeedsBurner(t *testing.T) {
	r := New(fixtures.Table())

	out, err := r.Resolve([]string{"HCl", "CuSO4"}, []string{"stirrer"})
	require.NoError(t, err)
	assert.True(t, out.IsBlocked())
	assert.Equal(t, []string{"burner"}, out.Missing)

	out, err = r.Resolve([]string{"HCl", "CuSO4"}, []string{"burner"})
	require.NoError(t, err)
	assert.True(t, out.IsResolved())
}

func TestResolveTemperatureGating(t *testing.T) {
	r := New(fixtures.Table())
	burner := []string{"burner"}

	tests := []struct {
		name string
		opts []AttemptOption
		want Kind
	}{
		{"no temperature given", nil, KindResolved},
		{"too cold", []AttemptOption{AtTemperature(20)}, KindBlocked},
		{"lower bound", []AttemptOption{AtTemperature(40)}, KindResolved},
		{"upper bound", []AttemptOption{AtTemperature(90)}, KindResolved},
		{"too hot", []AttemptOption{AtTemperature(91)}, KindBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Resolve([]string{"HCl", "CuSO4"}, burner, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Kind)
			if tt.want == KindBlocked {
				require.NotNil(t, out.Temperature)
				assert.Equal(t, int64(40), *out.Temperature.Min)
				assert.Equal(t, int64(90), *out.Temperature.Max)
				assert.Empty(t, out.Missing)
			}
		})
	}
}

func TestResolveTemperatureIgnoredWithoutBounds(t *testing.T) {
	out, err := New(fixtures.Table()).Resolve([]string{"HCl", "NaOH"}, nil, AtTemperature(-50))
	require.NoError(t, err)
	assert.True(t, out.IsResolved())
	assert.Nil(t, out.Temperature)
}

func TestResolveNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := New(fixtures.Table(), WithLogger(zap.New(core).Sugar()))

	out, err := r.Resolve([]string{"HCl", "AgNO3"}, nil)
	require.NoError(t, err)
	assert.True(t, out.IsNotFound())
	assert.Nil(t, out.Record)
	assert.Equal(t, "AGNO3+HCL", out.Key.String())
	assert.Equal(t, 1, logs.Len())
}

func TestResolveInvalidReactants(t *testing.T) {
	r := New(fixtures.Table())
	tests := []struct {
		name    string
		present []string
	}{
		{"none", nil},
		{"single", []string{"HCl"}},
		{"four", []string{"HCl", "NaOH", "CuSO4", "Litmus"}},
		{"blank member", []string{"HCl", "  "}},
		{"repeated identity", []string{"HCl", " hcl"}},
		{"repeated in triple", []string{"NaOH", "HCl", "NAOH"}},
		{"joined pair posing as one", []string{"HCl+NaOH", "Litmus"}},
		{"joined pair hiding a repeat", []string{"HCl+NaOH", "HCl"}},
		{"separator only", []string{"HCl", "+"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.present, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidReactants))
		})
	}
}

func TestResolveCompoundIdentifierNotADefect(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := New(fixtures.Table(), WithLogger(zap.New(core).Sugar()), WithMetrics(m))

	_, err := r.Resolve([]string{"HCl+NaOH", "HCl"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `identifier "HCl+NaOH" contains "+"`)
	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.defects))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("invalid")))
}

func TestResolveOrderInsensitive(t *testing.T) {
	r := New(fixtures.Table())
	a, err := r.Resolve([]string{"HCl", "NaOH", "Litmus"}, nil)
	require.NoError(t, err)
	b, err := r.Resolve([]string{"Litmus", "HCl", "NaOH"}, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolveDoesNotExposeTable(t *testing.T) {
	r := New(fixtures.Table())
	out, err := r.Resolve([]string{"HCl", "NaOH"}, nil)
	require.NoError(t, err)
	out.Record.Observations[0] = "mutated"

	again, err := r.Resolve([]string{"HCl", "NaOH"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Solution warms slightly", again.Record.Observations[0])
}

func TestResolveConcurrent(t *testing.T) {
	r := New(fixtures.Table())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				out, err := r.Resolve([]string{"CuSO4", "NaOH"}, []string{"stirrer"})
				assert.NoError(t, err)
				assert.True(t, out.IsResolved())
			}
		}()
	}
	wg.Wait()
}

func TestResolveMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := New(fixtures.Table(), WithMetrics(m))

	_, _ = r.Resolve([]string{"HCl", "NaOH"}, nil)
	_, _ = r.Resolve([]string{"CuSO4", "NaOH"}, nil)
	_, _ = r.Resolve([]string{"CuSO4", "NaOH"}, nil)
	_, _ = r.Resolve([]string{"HCl", "AgNO3"}, nil)
	_, _ = r.Resolve([]string{"HCl"}, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("resolved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.defects))

	n, err := testutil.GatherAndCount(reg, "mixlab_resolve_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestMissingApparatus(t *testing.T) {
	assert.Equal(t, []string{"burner", "stirrer"},
		MissingApparatus([]string{"stirrer", "burner", "Stirrer"}, nil))
	assert.Empty(t, MissingApparatus([]string{"stirrer"}, []string{"STIRRER"}))
	assert.Empty(t, MissingApparatus(nil, []string{"stirrer"}))
	assert.Equal(t, []string{"thermometer"},
		MissingApparatus([]string{" ", "thermometer"}, []string{"stirrer"}))
}
