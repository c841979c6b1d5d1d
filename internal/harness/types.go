package harness

// TraceEvent records one mixing attempt.
type TraceEvent struct {
	Seq         int64    `json:"seq"`
	Reactants   []string `json:"reactants"`
	Apparatus   []string `json:"apparatus"`
	Temperature *int64   `json:"temperature,omitempty"`
	Key         string   `json:"key,omitempty"`
	Outcome     string   `json:"outcome"` // resolved, blocked, not_found or invalid
	Type        string   `json:"type,omitempty"`
	Product     string   `json:"product,omitempty"`
	Missing     []string `json:"missing,omitempty"`
	Error       string   `json:"error,omitempty"`

	// Suggestions maps each unknown reactant of a not_found attempt to
	// close table identifiers.
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// OutcomeInvalid marks an attempt rejected before lookup.
const OutcomeInvalid = "invalid"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// TableSize is the number of entries in the built table.
	TableSize int `json:"table_size"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
