package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v83/github"
)

// GitHubRef points at a file in a GitHub repository:
// owner/repo/path/to/file[@ref].
type GitHubRef struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

func (r GitHubRef) String() string {
	s := fmt.Sprintf("%s/%s/%s", r.Owner, r.Repo, r.Path)
	if r.Ref != "" {
		s += "@" + r.Ref
	}
	return s
}

// ParseGitHubRef parses owner/repo/path[@ref].
func ParseGitHubRef(s string) (*GitHubRef, error) {
	s = strings.TrimSpace(s)
	ref := ""
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s, ref = s[:i], s[i+1:]
		if ref == "" {
			return nil, fmt.Errorf("empty ref in github location: %q", s)
		}
	}

	parts := strings.SplitN(s, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || strings.Trim(parts[2], "/") == "" {
		return nil, fmt.Errorf("invalid github location %q, expected owner/repo/path[@ref]", s)
	}

	return &GitHubRef{
		Owner: parts[0],
		Repo:  parts[1],
		Path:  strings.Trim(parts[2], "/"),
		Ref:   ref,
	}, nil
}

// NewGitHubClient returns a GitHub API client, authenticated when token is set.
func NewGitHubClient(ctx context.Context, token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	return github.NewClient(GetOAuthClient(ctx, token))
}

// DownloadGitHubFile opens the file ref points at. The caller closes the
// returned reader.
func DownloadGitHubFile(ctx context.Context, client *github.Client, ref *GitHubRef) (io.ReadCloser, error) {
	if client == nil {
		return nil, errors.New("github client required")
	}
	if ref == nil {
		return nil, errors.New("github ref required")
	}

	var opts *github.RepositoryContentGetOptions
	if ref.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref.Ref}
	}

	rc, resp, err := client.Repositories.DownloadContents(ctx, ref.Owner, ref.Repo, ref.Path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", ref, ErrorURLNotFound)
		}
		return nil, fmt.Errorf("failed to download %s: %w", ref, err)
	}

	if resp != nil && resp.StatusCode != http.StatusOK {
		rc.Close()
		return nil, fmt.Errorf("error downloading %s (status: %d)", ref, resp.StatusCode)
	}

	if err := waitForRateLimit(ctx, resp); err != nil {
		rc.Close()
		return nil, err
	}

	return rc, nil
}
