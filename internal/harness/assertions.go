package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/mixlab/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the full trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s\n", ev.Seq, strings.Join(ev.Reactants, " + "), ev.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTableSize:
			err = assertTableSize(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertTraceContains checks that some event has the given key and,
// when set, the given outcome.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	want := ir.ParseKey(a.Key).String()
	for _, ev := range trace {
		if ev.Key == want && (a.Outcome == "" || ev.Outcome == a.Outcome) {
			return nil
		}
	}
	expected := "key " + want
	if a.Outcome != "" {
		expected += " with outcome " + a.Outcome
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the outcomes appear in order. Intervening
// events are allowed.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Outcomes) && ev.Outcome == a.Outcomes[next] {
			next++
		}
	}
	if next == len(a.Outcomes) {
		return nil
	}
	actual := make([]string, len(trace))
	for i, ev := range trace {
		actual[i] = ev.Outcome
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("outcomes in order %v", a.Outcomes),
		Actual:   fmt.Sprintf("%v", actual),
		Trace:    trace,
	}
}

// assertTraceCount checks the number of events with an outcome.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, ev := range trace {
		if ev.Outcome == a.Outcome {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s events", a.Count, a.Outcome),
		Actual:   fmt.Sprintf("%d", n),
		Trace:    trace,
	}
}

// assertTableSize checks the number of entries in the built table.
func assertTableSize(result *Result, a Assertion) error {
	if result.TableSize == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTableSize,
		Expected: fmt.Sprintf("%d table entries", a.Count),
		Actual:   fmt.Sprintf("%d", result.TableSize),
		Trace:    result.Trace,
	}
}
