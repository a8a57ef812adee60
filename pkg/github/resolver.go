package github

import (
	"context"
	"errors"
	"fmt"
)

// SkipNotice records an owner-expanded repository the filter dropped.
// Skips are informational; they are not outcomes.
type SkipNotice struct {
	Repo   RepoRef
	Reason string
}

// Resolution is the result of expanding all source specs: an ordered,
// filtered, deduplicated candidate list plus everything worth telling the
// user about along the way.
type Resolution struct {
	Candidates []Candidate
	Skipped    []SkipNotice
	Warnings   []string
}

// Resolver expands source specs into candidates. An explicit owner/name
// spec yields exactly that reference without a metadata fetch; existence is
// validated later, at fork time. An owner spec expands through the listing
// API and passes each entry through the filter.
type Resolver struct {
	client APIClient
	filter Filter

	// pacer gates listing calls when read pacing is enabled; nil means
	// reads are unthrottled.
	pacer Pacer
}

// NewResolver creates a resolver over the given client and filter policy.
func NewResolver(client APIClient, filter Filter) *Resolver {
	return &Resolver{client: client, filter: filter}
}

// PaceReads makes listing calls subject to the given pacer. Whether
// read-only calls should share the mutating-call pacing interval is a
// policy choice, off by default.
func (r *Resolver) PaceReads(pacer Pacer) {
	r.pacer = pacer
}

// Resolve expands specs in order. Candidate order is: specs in the order
// given, and within an owner expansion, repositories in listing order.
// Duplicates collapse to the first occurrence.
//
// A single owner that cannot be listed contributes zero candidates and a
// warning; the run only fails if every spec fails to resolve, or on the
// first authentication error, which no later call could survive.
func (r *Resolver) Resolve(ctx context.Context, specs []SourceSpec) (*Resolution, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no sources given")
	}

	res := &Resolution{}
	seen := make(map[string]struct{})
	failed := 0

	add := func(ref RepoRef, explicit bool) {
		key := ref.Key()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		res.Candidates = append(res.Candidates, Candidate{RepoRef: ref, Explicit: explicit})
	}

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !spec.IsOwner() {
			add(RepoRef{Owner: spec.Owner, Name: spec.Name}, true)
			continue
		}

		if err := r.expandOwner(ctx, spec.Owner, add, res); err != nil {
			if IsAuthError(err) {
				return nil, err
			}
			failed++
			res.Warnings = append(res.Warnings, fmt.Sprintf("source %s: %v", spec.Owner, err))
		}
	}

	if failed == len(specs) {
		return nil, fmt.Errorf("no sources could be resolved")
	}
	return res, nil
}

// expandOwner lists every repository the owner has and feeds the keepers
// through add.
func (r *Resolver) expandOwner(ctx context.Context, owner string, add func(RepoRef, bool), res *Resolution) error {
	it := r.client.ListRepositories(ctx, owner)
	for {
		if r.pacer != nil {
			if err := r.pacer.Wait(ctx); err != nil {
				return err
			}
		}
		meta, err := it.Next(ctx)
		if errors.Is(err, ErrIterDone) {
			return nil
		}
		if err != nil {
			return err
		}

		if reason, excluded := r.filter.Exclude(meta); excluded {
			res.Skipped = append(res.Skipped, SkipNotice{Repo: meta.RepoRef, Reason: reason})
			continue
		}
		add(meta.RepoRef, false)
	}
}
