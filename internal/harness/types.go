package harness

import (
	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/report"
)

// Step outcomes besides error kinds.
const (
	OutcomeOK      = "ok"
	OutcomeRefused = "refused"
	OutcomeError   = "error"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Action  string `json:"action"`
	Product string `json:"product,omitempty"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step produced its expected outcome and
	// every expectation and invariant held.
	Pass bool `json:"pass"`

	// Trace lists executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final store contents.
	Products []catalog.Product `json:"products"`
	Sales    []ledger.Sale     `json:"sales"`
	Report   report.Report     `json:"report"`
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

// AddTrace appends a step outcome.
func (r *Result) AddTrace(action, product, outcome, detail string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     len(r.Trace) + 1,
		Action:  action,
		Product: product,
		Outcome: outcome,
		Detail:  detail,
	})
}
