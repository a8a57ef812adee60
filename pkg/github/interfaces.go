package github

import (
	"context"
	"errors"
)

// ErrIterDone is returned by RepoIterator.Next when the listing is exhausted.
var ErrIterDone = errors.New("no more repositories")

// RepoIterator is a finite, non-restartable lazy sequence of repositories.
// It fetches pages incrementally; a fresh ListRepositories call restarts
// from page one.
type RepoIterator interface {
	// Next returns the next repository, or ErrIterDone when the sequence
	// is exhausted.
	Next(ctx context.Context) (*RepoMetadata, error)
}

// APIClient defines the capability surface the engine needs from the
// hosting API. It is an interface so a deterministic in-memory fake can
// stand in for the real API in tests.
type APIClient interface {
	// ListRepositories lists every repository owned by a user or
	// organization, paginating transparently.
	ListRepositories(ctx context.Context, owner string) RepoIterator

	// GetRepository fetches a single repository's metadata. A missing
	// repository is (nil, nil), not an error.
	GetRepository(ctx context.Context, owner, name string) (*RepoMetadata, error)

	// CreateFork forks the source repository under destOwner. Forking a
	// repository that is already forked there succeeds and returns the
	// existing fork's metadata.
	CreateFork(ctx context.Context, source RepoRef, destOwner string) (*RepoMetadata, error)

	// SyncFork brings an existing fork's branch up to date with its
	// upstream. Nothing to sync is success.
	SyncFork(ctx context.Context, repo RepoRef, branch string) error
}
