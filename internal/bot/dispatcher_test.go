package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/blogramhq/blogram/internal/link"
	postentity "github.com/blogramhq/blogram/internal/post/entity"
	"github.com/blogramhq/blogram/internal/stats"
)

type fakeLinker struct {
	res        link.LinkResult
	err        error
	gotChannel string
	gotUser    string
}

func (f *fakeLinker) Link(ctx context.Context, telegramUserID, claimedUsername string) (link.LinkResult, error) {
	f.gotChannel = telegramUserID
	f.gotUser = claimedUsername
	return f.res, f.err
}

type fakeStats struct {
	snap stats.Snapshot
	err  error
}

func (f *fakeStats) Snapshot(ctx context.Context) (stats.Snapshot, error) { return f.snap, f.err }

type fakePosts struct {
	posts []*postentity.PublishedPost
	err   error
}

func (f *fakePosts) ListPublished(ctx context.Context, limit int) ([]*postentity.PublishedPost, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.posts) > limit {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}

func newTestDispatcher(l *fakeLinker, s *fakeStats, p *fakePosts) *Dispatcher {
	if l == nil {
		l = &fakeLinker{}
	}
	if s == nil {
		s = &fakeStats{}
	}
	if p == nil {
		p = &fakePosts{}
	}
	return NewDispatcher(nil, l, s, p, zap.NewNop().Sugar())
}

var alice = Sender{ID: 42, FirstName: "Alice", LastName: "Smith"}

func TestHandleCommand_Static(t *testing.T) {
	d := newTestDispatcher(nil, nil, nil)
	ctx := context.Background()

	assert.Equal(t, startReply, d.handleCommand(ctx, "start", "", alice))
	assert.Equal(t, helpReply, d.handleCommand(ctx, "help", "", alice))
	assert.Equal(t, unknownCmdReply, d.handleCommand(ctx, "bogus", "", alice))
}

func TestHandleCommand_Stats(t *testing.T) {
	s := &fakeStats{snap: stats.Snapshot{TotalAccounts: 3, TotalPosts: 2, PublishedPosts: 1, LinkedAccounts: 1}}
	d := newTestDispatcher(nil, s, nil)

	reply := d.handleCommand(context.Background(), "stats", "", alice)
	assert.Contains(t, reply, "Accounts: 3")
	assert.Contains(t, reply, "Posts: 2")
	assert.Contains(t, reply, "Published posts: 1")
	assert.Contains(t, reply, "Linked Telegram accounts: 1")
}

func TestHandleCommand_StatsFallback(t *testing.T) {
	s := &fakeStats{err: stats.ErrAggregation}
	d := newTestDispatcher(nil, s, nil)

	reply := d.handleCommand(context.Background(), "stats", "", alice)
	assert.Equal(t, statsFallbackReply, reply)
}

func TestHandleCommand_ProfileUsage(t *testing.T) {
	d := newTestDispatcher(nil, nil, nil)

	reply := d.handleCommand(context.Background(), "profile", "  ", alice)
	assert.Equal(t, profileUsageReply, reply)
}

func TestHandleCommand_ProfileLinked(t *testing.T) {
	l := &fakeLinker{res: link.LinkResult{Linked: true, Username: "alice"}}
	d := newTestDispatcher(l, nil, nil)

	reply := d.handleCommand(context.Background(), "profile", "alice", alice)
	assert.Contains(t, reply, "Successfully linked to user: alice")
	assert.Equal(t, "42", l.gotChannel, "sender's Telegram ID is the channel identity")
	assert.Equal(t, "alice", l.gotUser)
}

func TestHandleCommand_ProfileNotFound(t *testing.T) {
	l := &fakeLinker{res: link.LinkResult{Linked: false, Username: "nobody"}}
	d := newTestDispatcher(l, nil, nil)

	reply := d.handleCommand(context.Background(), "profile", "nobody", alice)
	assert.Contains(t, reply, "not found")
	assert.Contains(t, reply, "account on the platform first")
}

func TestHandleCommand_ProfileFallback(t *testing.T) {
	l := &fakeLinker{err: errors.New("db down")}
	d := newTestDispatcher(l, nil, nil)

	reply := d.handleCommand(context.Background(), "profile", "alice", alice)
	assert.Equal(t, linkFallbackReply, reply)
}

func TestHandleCommand_PostsEmpty(t *testing.T) {
	d := newTestDispatcher(nil, nil, &fakePosts{})

	reply := d.handleCommand(context.Background(), "posts", "", alice)
	assert.Equal(t, noPostsReply, reply)
}

func TestHandleCommand_PostsFallback(t *testing.T) {
	d := newTestDispatcher(nil, nil, &fakePosts{err: errors.New("db down")})

	reply := d.handleCommand(context.Background(), "posts", "", alice)
	assert.Equal(t, postsFallbackReply, reply)
}

func TestHandleCommand_PostsDigest(t *testing.T) {
	long := strings.Repeat("x", 150)
	p := &fakePosts{posts: []*postentity.PublishedPost{
		{
			Post: postentity.Post{
				Title:     "Hello world",
				Content:   long,
				CreatedAt: time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
			},
			AuthorUsername: "alice",
		},
		{
			Post: postentity.Post{
				Title:     "Short one",
				Content:   "tiny",
				CreatedAt: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
			},
			AuthorUsername: "bob",
		},
	}}
	d := newTestDispatcher(nil, nil, p)

	reply := d.handleCommand(context.Background(), "posts", "", alice)
	assert.Contains(t, reply, "1. Hello world")
	assert.Contains(t, reply, "by alice on 2026-08-01 10:30")
	assert.Contains(t, reply, strings.Repeat("x", 100)+"...")
	assert.NotContains(t, reply, strings.Repeat("x", 101))
	assert.Contains(t, reply, "2. Short one")
	assert.Contains(t, reply, "tiny")
	assert.NotContains(t, reply, "tiny...")
}

func TestPreview_RuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 101)
	got := preview(long)
	assert.Equal(t, strings.Repeat("é", 100)+"...", got)

	assert.Equal(t, "plain", preview("plain"))
}

func TestFormatEcho(t *testing.T) {
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	reply := formatEcho("hi there", alice, at)
	assert.Contains(t, reply, `"hi there"`)
	assert.Contains(t, reply, "Alice Smith")
	assert.Contains(t, reply, "id 42")
}

func TestTokenFromEnv(t *testing.T) {
	_, err := TokenFromEnv(func(string) string { return "" })
	assert.Error(t, err)

	tok, err := TokenFromEnv(func(k string) string {
		if k == "TELEGRAM_BOT_TOKEN" {
			return "123:abc"
		}
		return ""
	})
	assert.NoError(t, err)
	assert.Equal(t, "123:abc", tok)
}
