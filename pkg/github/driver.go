package github

import (
	"context"
)

// ProgressFunc is called after each candidate finishes, with its position
// in the batch. Outcomes stream in exactly candidate order.
type ProgressFunc func(index, total int, outcome Outcome)

// Driver runs the per-repository fork/sync state machine. Candidates are
// handled strictly one at a time, in order, with every mutating call gated
// by the shared pacer; GitHub's abuse limiting is undocumented and
// sensitive to request burstiness.
type Driver struct {
	client APIClient
	pacer  Pacer
	cfg    RunConfig
	retry  RetryPolicy

	// Progress, when set, receives each outcome as it is recorded.
	Progress ProgressFunc
}

// NewDriver creates a driver with the standard retry policy, bounded by
// cfg.MaxAttempts when set.
func NewDriver(client APIClient, pacer Pacer, cfg RunConfig) *Driver {
	retry := DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	return &Driver{
		client: client,
		pacer:  pacer,
		cfg:    cfg,
		retry:  retry,
	}
}

// Run processes every candidate and returns one outcome per candidate, in
// order. A failure on one repository never aborts the rest of the batch;
// the two exceptions are an authentication error, which no later call
// could survive, and context cancellation, which is honored between
// candidates so the in-flight repository is either fully handled or not
// started.
func (d *Driver) Run(ctx context.Context, candidates []Candidate) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(candidates))

	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		outcome, fatal := d.process(ctx, candidate)
		outcomes = append(outcomes, outcome)
		if d.Progress != nil {
			d.Progress(i+1, len(candidates), outcome)
		}
		if fatal != nil {
			return outcomes, fatal
		}
	}

	return outcomes, nil
}

// process decides and executes fork vs. sync vs. skip for one candidate.
// The second return value is non-nil only for run-fatal errors.
func (d *Driver) process(ctx context.Context, c Candidate) (Outcome, error) {
	existing, err := d.client.GetRepository(ctx, d.cfg.Destination, c.Name)
	if err != nil {
		outcome := Outcome{Repo: c.RepoRef, Status: StatusFailed, Reason: err.Error(), Attempts: 1}
		if IsAuthError(err) {
			return outcome, err
		}
		return outcome, nil
	}

	if existing == nil {
		return d.fork(ctx, c)
	}
	if !d.cfg.Sync {
		return Outcome{Repo: c.RepoRef, Status: StatusSkipped, Reason: "already exists"}, nil
	}
	return d.sync(ctx, c, existing)
}

// fork creates a fork of the candidate at the destination.
func (d *Driver) fork(ctx context.Context, c Candidate) (Outcome, error) {
	if d.cfg.DryRun {
		return Outcome{Repo: c.RepoRef, Status: StatusWouldFork, Reason: "would be forked (dry-run)"}, nil
	}

	attempts, err := d.retry.Do(ctx, func() error {
		if werr := d.pacer.Wait(ctx); werr != nil {
			return werr
		}
		_, ferr := d.client.CreateFork(ctx, c.RepoRef, d.cfg.Destination)
		return ferr
	})
	if err != nil {
		outcome := Outcome{Repo: c.RepoRef, Status: StatusFailed, Reason: err.Error(), Attempts: attempts}
		if IsAuthError(err) {
			return outcome, err
		}
		return outcome, nil
	}

	return Outcome{Repo: c.RepoRef, Status: StatusForked, Reason: "forked", Attempts: attempts}, nil
}

// sync fast-forwards the existing fork's default branch from its upstream.
// Divergence is terminal: retrying cannot resolve a content conflict.
func (d *Driver) sync(ctx context.Context, c Candidate, existing *RepoMetadata) (Outcome, error) {
	if d.cfg.DryRun {
		return Outcome{Repo: c.RepoRef, Status: StatusWouldSync, Reason: "would be synced (dry-run)"}, nil
	}

	attempts, err := d.retry.Do(ctx, func() error {
		if werr := d.pacer.Wait(ctx); werr != nil {
			return werr
		}
		return d.client.SyncFork(ctx, existing.RepoRef, existing.DefaultBranch)
	})
	if err != nil {
		outcome := Outcome{Repo: c.RepoRef, Status: StatusFailed, Reason: err.Error(), Attempts: attempts}
		if IsAuthError(err) {
			return outcome, err
		}
		return outcome, nil
	}

	return Outcome{Repo: c.RepoRef, Status: StatusSynced, Reason: "synced", Attempts: attempts}, nil
}
