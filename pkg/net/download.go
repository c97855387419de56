package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrorURLNotFound = errors.New("URL not found")

// Fetch opens url for reading. The caller closes the returned body.
func Fetch(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	if client == nil {
		return nil, errors.New("http client required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}

	req.Header.Set("User-Agent", clientAgent)

	resp, err := client.Do(req) //nolint:gosec // URL is supplied by the operator importing a task
	if err != nil {
		return nil, fmt.Errorf("error executing HTTP Get request: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", url, ErrorURLNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		PrintHTTPResponse(resp)
		resp.Body.Close()
		return nil, fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	return resp.Body, nil
}
