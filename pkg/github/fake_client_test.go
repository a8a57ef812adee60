package github

import (
	"context"
	"strings"
	"time"
)

func durationSeconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// fakeClient is a deterministic in-memory APIClient. Listing data, the
// destination's current repositories, and per-call error queues are all
// seeded by the test.
type fakeClient struct {
	owners    map[string][]*RepoMetadata // listing per owner login (lower-cased)
	ownerErrs map[string]error           // listing failure per owner
	existing  map[string]*RepoMetadata   // repositories by RepoRef key
	getErrs   map[string]error           // GetRepository failure by key
	forkErrs  map[string][]error         // CreateFork failure queue by source key
	syncErrs  map[string][]error         // SyncFork failure queue by repo key

	forkCalls []RepoRef
	syncCalls []RepoRef
	syncedTo  []string // branch passed to each SyncFork call
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		owners:    make(map[string][]*RepoMetadata),
		ownerErrs: make(map[string]error),
		existing:  make(map[string]*RepoMetadata),
		getErrs:   make(map[string]error),
		forkErrs:  make(map[string][]error),
		syncErrs:  make(map[string][]error),
	}
}

func (f *fakeClient) addOwnerRepo(owner string, meta *RepoMetadata) {
	key := strings.ToLower(owner)
	f.owners[key] = append(f.owners[key], meta)
}

func (f *fakeClient) addExisting(meta *RepoMetadata) {
	f.existing[meta.Key()] = meta
}

func (f *fakeClient) ListRepositories(_ context.Context, owner string) RepoIterator {
	key := strings.ToLower(owner)
	if err := f.ownerErrs[key]; err != nil {
		return &sliceIterator{err: err}
	}
	return &sliceIterator{repos: f.owners[key]}
}

func (f *fakeClient) GetRepository(_ context.Context, owner, name string) (*RepoMetadata, error) {
	key := RepoRef{Owner: owner, Name: name}.Key()
	if err := f.getErrs[key]; err != nil {
		return nil, err
	}
	if meta, ok := f.existing[key]; ok {
		return meta, nil
	}
	return nil, nil
}

func (f *fakeClient) CreateFork(_ context.Context, source RepoRef, destOwner string) (*RepoMetadata, error) {
	f.forkCalls = append(f.forkCalls, source)
	if err := popErr(f.forkErrs, source.Key()); err != nil {
		return nil, err
	}
	fork := &RepoMetadata{
		RepoRef:       RepoRef{Owner: destOwner, Name: source.Name},
		Fork:          true,
		DefaultBranch: "main",
		Parent:        &source,
	}
	f.existing[fork.Key()] = fork
	return fork, nil
}

func (f *fakeClient) SyncFork(_ context.Context, repo RepoRef, branch string) error {
	f.syncCalls = append(f.syncCalls, repo)
	f.syncedTo = append(f.syncedTo, branch)
	return popErr(f.syncErrs, repo.Key())
}

// popErr dequeues the next scripted error for key, nil when exhausted.
func popErr(queues map[string][]error, key string) error {
	queue := queues[key]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	queues[key] = queue[1:]
	return err
}

// sliceIterator yields a fixed slice, or a single error.
type sliceIterator struct {
	repos []*RepoMetadata
	err   error
	i     int
}

func (s *sliceIterator) Next(_ context.Context) (*RepoMetadata, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.i >= len(s.repos) {
		return nil, ErrIterDone
	}
	next := s.repos[s.i]
	s.i++
	return next, nil
}

// repo builds public, non-fork, non-empty metadata for tests.
func repo(owner, name string) *RepoMetadata {
	return &RepoMetadata{
		RepoRef:       RepoRef{Owner: owner, Name: name},
		Size:          10,
		DefaultBranch: "main",
	}
}

func rateLimitErr(retryAfter int) *APIError {
	return &APIError{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limit exceeded",
		RetryAfter: durationSeconds(retryAfter),
		Retryable:  true,
	}
}

func divergedErr() *APIError {
	return &APIError{
		Type:    ErrorTypeDiverged,
		Message: "fork has diverged from its upstream",
	}
}

func authErr() *APIError {
	return &APIError{
		Type:    ErrorTypeAuth,
		Message: "authentication failed",
	}
}

func notFoundErr(resource string) *APIError {
	return &APIError{
		Type:     ErrorTypeNotFound,
		Message:  "not found",
		Resource: resource,
	}
}
