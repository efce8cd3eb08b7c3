// Package stats computes on-demand platform-wide counts for the bot's stats
// command.
package stats

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrAggregation wraps any underlying count failure so callers see a single
// failure signal instead of partial results.
var ErrAggregation = errors.New("stats aggregation failed")

// Snapshot is a point-in-time count tuple. The four counts are independent
// queries with no shared transaction, so under concurrent writes they may
// reflect slightly different instants. That approximation is accepted.
type Snapshot struct {
	TotalAccounts  int64 `json:"total_accounts"`
	TotalPosts     int64 `json:"total_posts"`
	PublishedPosts int64 `json:"published_posts"`
	LinkedAccounts int64 `json:"linked_accounts"`
}

// AccountSource counts accounts.
type AccountSource interface {
	Count(ctx context.Context) (int64, error)
}

// ProfileSource counts profiles with a bound channel identity.
type ProfileSource interface {
	CountLinked(ctx context.Context) (int64, error)
}

// PostSource counts posts, total and published.
type PostSource interface {
	Count(ctx context.Context) (int64, error)
	CountPublished(ctx context.Context) (int64, error)
}

// Aggregator runs the count queries against the shared stores.
type Aggregator struct {
	accounts AccountSource
	profiles ProfileSource
	posts    PostSource
}

func NewAggregator(accounts AccountSource, profiles ProfileSource, posts PostSource) *Aggregator {
	return &Aggregator{accounts: accounts, profiles: profiles, posts: posts}
}

// Snapshot runs the four count queries concurrently. If any of them fails
// the whole call fails with an ErrAggregation-wrapped error and no partial
// counts are returned.
func (a *Aggregator) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := a.accounts.Count(ctx)
		snap.TotalAccounts = n
		return err
	})
	g.Go(func() error {
		n, err := a.posts.Count(ctx)
		snap.TotalPosts = n
		return err
	})
	g.Go(func() error {
		n, err := a.posts.CountPublished(ctx)
		snap.PublishedPosts = n
		return err
	})
	g.Go(func() error {
		n, err := a.profiles.CountLinked(ctx)
		snap.LinkedAccounts = n
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrAggregation, err)
	}
	return snap, nil
}
