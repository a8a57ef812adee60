package github

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Reporter accumulates outcomes in processing order and produces the run
// summary. Dry-run outcomes never count as failures.
type Reporter struct {
	outcomes []Outcome
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Record appends an outcome. Outcomes arrive in candidate order.
func (r *Reporter) Record(outcome Outcome) {
	r.outcomes = append(r.outcomes, outcome)
}

// Outcomes returns every recorded outcome in processing order.
func (r *Reporter) Outcomes() []Outcome {
	return r.outcomes
}

// Summary returns the count of outcomes per status.
func (r *Reporter) Summary() map[Status]int {
	summary := make(map[Status]int)
	for _, outcome := range r.outcomes {
		summary[outcome.Status]++
	}
	return summary
}

// Failed reports whether any repository ended in FAILED; the process exit
// status is non-zero exactly when this is true.
func (r *Reporter) Failed() bool {
	for _, outcome := range r.outcomes {
		if outcome.Status == StatusFailed {
			return true
		}
	}
	return false
}

// FailureCount returns the number of FAILED outcomes.
func (r *Reporter) FailureCount() int {
	count := 0
	for _, outcome := range r.outcomes {
		if outcome.Status == StatusFailed {
			count++
		}
	}
	return count
}

// Render writes the per-repository table and the status counts. Individual
// failures are never silent; every outcome and its reason is enumerated.
func (r *Reporter) Render(w io.Writer) {
	if len(r.outcomes) == 0 {
		fmt.Fprintln(w, "No repositories to process.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Repository", "Status", "Attempts", "Reason"})
	for _, outcome := range r.outcomes {
		attempts := ""
		if outcome.Attempts > 0 {
			attempts = fmt.Sprintf("%d", outcome.Attempts)
		}
		table.Append([]string{outcome.Repo.String(), string(outcome.Status), attempts, outcome.Reason})
	}
	table.Render()

	summary := r.Summary()
	fmt.Fprintf(w, "\n%d repositories processed", len(r.outcomes))
	for _, status := range []Status{StatusForked, StatusSynced, StatusSkipped, StatusWouldFork, StatusWouldSync, StatusFailed} {
		if n := summary[status]; n > 0 {
			fmt.Fprintf(w, ", %d %s", n, status)
		}
	}
	fmt.Fprintln(w)
}
