package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(context.Background(), nil)
	err := s.Add("not a cron spec", "crawl", func(context.Context) error { return nil })
	require.Error(t, err)
	require.Contains(t, err.Error(), "crawl")
}

func TestAddAcceptsStandardSpec(t *testing.T) {
	s := New(context.Background(), nil)
	require.NoError(t, s.Add("0 9 * * *", "crawl", func(context.Context) error { return nil }))
	require.NoError(t, s.Add("*/5 * * * *", "sweep", func(context.Context) error { return errors.New("ignored here") }))

	s.Start()
	s.Stop()
}
