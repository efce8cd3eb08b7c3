package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounts struct {
	accounts, posts, published, linked int64

	accountsErr, postsErr, publishedErr, linkedErr error
}

func (f *fakeCounts) Count(ctx context.Context) (int64, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeCounts) CountLinked(ctx context.Context) (int64, error) {
	return f.linked, f.linkedErr
}

type fakePostCounts struct{ f *fakeCounts }

func (p fakePostCounts) Count(ctx context.Context) (int64, error) {
	return p.f.posts, p.f.postsErr
}

func (p fakePostCounts) CountPublished(ctx context.Context) (int64, error) {
	return p.f.published, p.f.publishedErr
}

func newTestAggregator(f *fakeCounts) *Aggregator {
	return NewAggregator(f, f, fakePostCounts{f})
}

func TestSnapshot_EmptyStorage(t *testing.T) {
	agg := newTestAggregator(&fakeCounts{})

	snap, err := agg.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Snapshot{}, snap)
}

func TestSnapshot_Counts(t *testing.T) {
	// 3 accounts (1 linked), 2 posts (1 published)
	agg := newTestAggregator(&fakeCounts{accounts: 3, posts: 2, published: 1, linked: 1})

	snap, err := agg.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Snapshot{
		TotalAccounts:  3,
		TotalPosts:     2,
		PublishedPosts: 1,
		LinkedAccounts: 1,
	}, snap)
}

func TestSnapshot_SingleAggregateFailure(t *testing.T) {
	cases := map[string]*fakeCounts{
		"accounts":  {accountsErr: errors.New("boom")},
		"posts":     {postsErr: errors.New("boom")},
		"published": {publishedErr: errors.New("boom")},
		"linked":    {linkedErr: errors.New("boom")},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			f.accounts, f.posts, f.published, f.linked = 3, 2, 1, 1
			agg := newTestAggregator(f)

			snap, err := agg.Snapshot(context.Background())
			require.ErrorIs(t, err, ErrAggregation)
			assert.Equal(t, Snapshot{}, snap, "no partial counts on failure")
		})
	}
}
