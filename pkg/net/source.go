package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/go-github/v83/github"
)

// SourceKind is where a constraint set is read from.
type SourceKind string

const (
	SourceFile   SourceKind = "file"
	SourceURL    SourceKind = "url"
	SourceGitHub SourceKind = "github"
)

// Source is a single constraint set location.
type Source struct {
	Kind     SourceKind `json:"kind" yaml:"kind"`
	Location string     `json:"location" yaml:"location"`
}

func (s Source) String() string {
	return string(s.Kind) + ":" + s.Location
}

// Opener opens sources of any kind.
type Opener struct {
	HTTP   *http.Client
	GitHub *github.Client
}

// NewOpener returns an opener whose remote clients carry token when set.
func NewOpener(ctx context.Context, token string) (*Opener, error) {
	c, err := GetClient(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP client: %w", err)
	}
	return &Opener{
		HTTP:   c,
		GitHub: NewGitHubClient(ctx, token),
	}, nil
}

// Open returns a reader over the source content. The caller closes it.
func (o *Opener) Open(ctx context.Context, s Source) (io.ReadCloser, error) {
	if s.Location == "" {
		return nil, errors.New("source location required")
	}

	switch s.Kind {
	case SourceFile:
		f, err := os.Open(s.Location)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", s.Location, err)
		}
		return f, nil
	case SourceURL:
		return Fetch(ctx, o.HTTP, s.Location)
	case SourceGitHub:
		ref, err := ParseGitHubRef(s.Location)
		if err != nil {
			return nil, err
		}
		return DownloadGitHubFile(ctx, o.GitHub, ref)
	default:
		return nil, fmt.Errorf("unsupported source kind: %s", s.Kind)
	}
}
