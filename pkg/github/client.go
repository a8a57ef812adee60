package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Client implements the APIClient interface using the GitHub REST API.
type Client struct {
	client *github.Client
	login  string
}

// NewClient creates a GitHub API client with the provided token. login is
// the authenticated user, used to decide whether a fork goes to the user
// account or to an organization.
func NewClient(token, login string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		client: github.NewClient(tc),
		login:  login,
	}
}

// ListRepositories returns a lazy, page-at-a-time iterator over every
// repository owned by a user or organization.
func (c *Client) ListRepositories(ctx context.Context, owner string) RepoIterator {
	return &repoPageIterator{
		client: c.client,
		owner:  owner,
		opts: &github.RepositoryListByUserOptions{
			ListOptions: github.ListOptions{PerPage: 100},
		},
	}
}

// repoPageIterator paginates through an owner's repositories. It is not
// restartable; exhausting it and calling Next again keeps returning
// ErrIterDone.
type repoPageIterator struct {
	client *github.Client
	owner  string
	opts   *github.RepositoryListByUserOptions
	buf    []*RepoMetadata
	done   bool
}

func (it *repoPageIterator) Next(ctx context.Context) (*RepoMetadata, error) {
	for len(it.buf) == 0 {
		if it.done {
			return nil, ErrIterDone
		}
		repos, resp, err := it.client.Repositories.ListByUser(ctx, it.owner, it.opts)
		if err != nil {
			it.done = true
			return nil, WrapAPIError(err, fmt.Sprintf("owner %s", it.owner))
		}
		for _, repo := range repos {
			it.buf = append(it.buf, convertRepository(repo))
		}
		if resp.NextPage == 0 {
			it.done = true
		} else {
			it.opts.Page = resp.NextPage
		}
	}

	next := it.buf[0]
	it.buf = it.buf[1:]
	return next, nil
}

// GetRepository retrieves a repository by owner and name. A missing
// repository is (nil, nil), not an error; the driver uses this to test
// whether a fork already exists at the destination.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*RepoMetadata, error) {
	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		wrapped := WrapAPIError(err, fmt.Sprintf("repository %s/%s", owner, name))
		if wrapped.Type == ErrorTypeNotFound {
			return nil, nil
		}
		return nil, wrapped
	}
	return convertRepository(repo), nil
}

// CreateFork forks source under destOwner. GitHub answers 202 while the
// fork is created asynchronously; that is success. Forking a repository
// that already has a fork at the destination is also success, returning
// the existing fork's metadata.
func (c *Client) CreateFork(ctx context.Context, source RepoRef, destOwner string) (*RepoMetadata, error) {
	opts := &github.RepositoryCreateForkOptions{}
	if !strings.EqualFold(destOwner, c.login) {
		opts.Organization = destOwner
	}

	repo, _, err := c.client.Repositories.CreateFork(ctx, source.Owner, source.Name, opts)
	var accepted *github.AcceptedError
	if errors.As(err, &accepted) {
		return &RepoMetadata{RepoRef: RepoRef{Owner: destOwner, Name: source.Name}}, nil
	}
	if err != nil {
		wrapped := WrapAPIError(err, fmt.Sprintf("fork of %s", source))
		if wrapped.Type == ErrorTypeConflict {
			existing, getErr := c.GetRepository(ctx, destOwner, source.Name)
			if getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, wrapped
	}
	return convertRepository(repo), nil
}

// SyncFork brings an existing fork's branch up to date with its upstream
// via the merge-upstream endpoint. A merge type of "none" means there was
// nothing to sync, which is success. A conflict means the fork has
// diverged and cannot be fast-forwarded; that is terminal, not retryable.
func (c *Client) SyncFork(ctx context.Context, repo RepoRef, branch string) error {
	req := &github.RepoMergeUpstreamRequest{}
	if branch != "" {
		req.Branch = github.String(branch)
	}

	_, _, err := c.client.Repositories.MergeUpstream(ctx, repo.Owner, repo.Name, req)
	if err != nil {
		wrapped := WrapAPIError(err, fmt.Sprintf("sync of %s", repo))
		if wrapped.Type == ErrorTypeConflict {
			wrapped.Type = ErrorTypeDiverged
			wrapped.Message = "fork has diverged from its upstream"
			wrapped.Retryable = false
		}
		return wrapped
	}
	return nil
}

// convertRepository converts a GitHub API repository to our metadata type.
func convertRepository(repo *github.Repository) *RepoMetadata {
	meta := &RepoMetadata{
		RepoRef: RepoRef{
			Owner: repo.GetOwner().GetLogin(),
			Name:  repo.GetName(),
		},
		Private:       repo.GetPrivate(),
		Fork:          repo.GetFork(),
		Size:          repo.GetSize(),
		DefaultBranch: repo.GetDefaultBranch(),
	}
	if parent := repo.GetParent(); parent != nil {
		meta.Parent = &RepoRef{
			Owner: parent.GetOwner().GetLogin(),
			Name:  parent.GetName(),
		}
	}
	return meta
}
