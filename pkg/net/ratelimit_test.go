package net

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-github/v83/github"
	"github.com/stretchr/testify/assert"
)

func TestWaitForRateLimit(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, waitForRateLimit(ctx, nil))

	plenty := &github.Response{Rate: github.Rate{Remaining: 100}}
	assert.NoError(t, waitForRateLimit(ctx, plenty))

	past := &github.Response{Rate: github.Rate{
		Remaining: 1,
		Reset:     github.Timestamp{Time: time.Now().Add(-time.Minute)},
	}}
	assert.NoError(t, waitForRateLimit(ctx, past))
}

func TestWaitForRateLimit_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	low := &github.Response{Rate: github.Rate{
		Remaining: 0,
		Reset:     github.Timestamp{Time: time.Now().Add(time.Hour)},
	}}
	assert.ErrorIs(t, waitForRateLimit(ctx, low), context.Canceled)
}
