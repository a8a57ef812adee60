package github

import (
	"fmt"
	"strings"
	"time"
)

// RepoRef identifies a repository by owner and name. Identity is
// case-insensitive; the original casing is kept for display and API calls.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Key returns the canonical lower-cased comparison key.
func (r RepoRef) Key() string {
	return strings.ToLower(r.Owner) + "/" + strings.ToLower(r.Name)
}

// String returns the display form "owner/name".
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// RepoMetadata describes a repository as reported by the hosting API.
// It is fetched fresh per run and never cached across runs.
type RepoMetadata struct {
	RepoRef
	Private       bool     `json:"private"`
	Fork          bool     `json:"fork"`
	Size          int      `json:"size"`
	DefaultBranch string   `json:"default_branch"`
	Parent        *RepoRef `json:"parent,omitempty"`
}

// SourceSpec is a single command-line source: either an explicit repository
// ("owner/name") or a bare owner login meaning all repositories owned by
// that user or organization (Name is empty in that case).
type SourceSpec struct {
	Owner string
	Name  string
}

// IsOwner reports whether the spec expands to all of an owner's repositories.
func (s SourceSpec) IsOwner() bool {
	return s.Name == ""
}

func (s SourceSpec) String() string {
	if s.IsOwner() {
		return s.Owner
	}
	return s.Owner + "/" + s.Name
}

// ParseSourceSpec parses "owner/name" or a bare owner login.
func ParseSourceSpec(raw string) (SourceSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SourceSpec{}, fmt.Errorf("empty source specification")
	}
	parts := strings.Split(raw, "/")
	switch len(parts) {
	case 1:
		return SourceSpec{Owner: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return SourceSpec{}, fmt.Errorf("invalid source %q: expected owner or owner/name", raw)
		}
		return SourceSpec{Owner: parts[0], Name: parts[1]}, nil
	default:
		return SourceSpec{}, fmt.Errorf("invalid source %q: expected owner or owner/name", raw)
	}
}

// Candidate is a resolved repository queued for the fork/sync driver.
// Explicit marks repositories named directly on the command line; those
// bypass the filter because naming one is explicit user intent.
type Candidate struct {
	RepoRef
	Explicit bool
}

// Status is the terminal state of one repository after the driver ran it.
type Status string

const (
	StatusForked    Status = "FORKED"
	StatusSynced    Status = "SYNCED"
	StatusSkipped   Status = "SKIPPED"
	StatusFailed    Status = "FAILED"
	StatusWouldFork Status = "WOULD_FORK"
	StatusWouldSync Status = "WOULD_SYNC"
)

// Outcome records what happened to one candidate. It is created once per
// candidate and never revisited within a run.
type Outcome struct {
	Repo     RepoRef `json:"repo"`
	Status   Status  `json:"status"`
	Reason   string  `json:"reason"`
	Attempts int     `json:"attempts"`
}

// RunConfig carries the per-run policy knobs for resolution and driving.
type RunConfig struct {
	Destination      string
	Sync             bool
	IncludePrivate   bool
	IncludeForks     bool
	IncludeDotGithub bool
	DryRun           bool
	WithoutSleeping  bool
	PaceReads        bool
	MinInterval      time.Duration
	MaxAttempts      int
}

// DefaultMinInterval is the pause enforced between mutating API calls.
// GitHub's abuse limits for rapid fork creation are undocumented; 30s has
// proven safe in practice.
const DefaultMinInterval = 30 * time.Second

// DefaultMaxAttempts bounds retries of rate-limited calls.
const DefaultMaxAttempts = 3
