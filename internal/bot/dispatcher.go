// Package bot maps inbound Telegram commands to core operations. The
// dispatcher is constructed explicitly and driven by Run; there is no
// package-level bot instance. Handlers run synchronously, one update at a
// time, directly against the blocking storage layer; the polling goroutine
// is the worker.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/blogramhq/blogram/internal/link"
	postentity "github.com/blogramhq/blogram/internal/post/entity"
	"github.com/blogramhq/blogram/internal/stats"
)

// AccountLinker resolves profile link commands.
type AccountLinker interface {
	Link(ctx context.Context, telegramUserID, claimedUsername string) (link.LinkResult, error)
}

// StatsSource produces the platform count snapshot.
type StatsSource interface {
	Snapshot(ctx context.Context) (stats.Snapshot, error)
}

// PostSource serves the published post digest.
type PostSource interface {
	ListPublished(ctx context.Context, limit int) ([]*postentity.PublishedPost, error)
}

// Sender identifies the Telegram user behind an update.
type Sender struct {
	ID        int64
	FirstName string
	LastName  string
}

// Dispatcher routes bot commands to the linker, stats aggregator and post
// store. Every branch produces a user-visible reply; failures are logged and
// answered with fixed fallback strings, never propagated to the poll loop.
type Dispatcher struct {
	api    *tgbotapi.BotAPI
	linker AccountLinker
	stats  StatsSource
	posts  PostSource
	logger *zap.SugaredLogger
}

func NewDispatcher(api *tgbotapi.BotAPI, linker AccountLinker, statsSrc StatsSource, posts PostSource, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{api: api, linker: linker, stats: statsSrc, posts: posts, logger: logger}
}

// Run long-polls for updates until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := d.api.GetUpdatesChan(cfg)

	d.logger.Infow("bot dispatcher running", "bot", d.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			d.api.StopReceivingUpdates()
			d.logger.Info("bot dispatcher stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			d.handleUpdate(ctx, update)
		}
	}
}

func (d *Dispatcher) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	from := Sender{ID: msg.From.ID, FirstName: msg.From.FirstName, LastName: msg.From.LastName}

	var reply string
	if msg.IsCommand() {
		reply = d.handleCommand(ctx, msg.Command(), msg.CommandArguments(), from)
	} else {
		reply = formatEcho(msg.Text, from, msg.Time())
	}
	if reply == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	if _, err := d.api.Send(out); err != nil {
		d.logger.Warnw("send reply failed", "chat_id", msg.Chat.ID, "err", err)
	}
}

// handleCommand returns the reply text for a single command invocation.
func (d *Dispatcher) handleCommand(ctx context.Context, command, args string, from Sender) string {
	switch command {
	case "start":
		return startReply
	case "help":
		return helpReply
	case "stats":
		return d.statsReply(ctx)
	case "profile":
		return d.profileReply(ctx, args, from)
	case "posts":
		return d.postsReply(ctx)
	default:
		return unknownCmdReply
	}
}

func (d *Dispatcher) statsReply(ctx context.Context) string {
	snap, err := d.stats.Snapshot(ctx)
	if err != nil {
		d.logger.Errorw("stats snapshot failed", "err", err)
		return statsFallbackReply
	}
	return formatStats(snap)
}

func (d *Dispatcher) profileReply(ctx context.Context, args string, from Sender) string {
	username := strings.TrimSpace(args)
	if username == "" {
		return profileUsageReply
	}
	// the sender's Telegram user ID is the channel identity being linked
	res, err := d.linker.Link(ctx, strconv.FormatInt(from.ID, 10), username)
	if err != nil {
		d.logger.Errorw("link failed", "telegram_user_id", from.ID, "username", username, "err", err)
		return linkFallbackReply
	}
	if !res.Linked {
		return formatNotFound(res.Username)
	}
	return formatLinked(res.Username)
}

func (d *Dispatcher) postsReply(ctx context.Context) string {
	posts, err := d.posts.ListPublished(ctx, 5)
	if err != nil {
		d.logger.Errorw("posts digest failed", "err", err)
		return postsFallbackReply
	}
	if len(posts) == 0 {
		return noPostsReply
	}
	return formatPosts(posts)
}

// TokenFromEnv reads the bot token, which is the one required secret for the
// bot entry point.
func TokenFromEnv(getenv func(string) string) (string, error) {
	tok := getenv("TELEGRAM_BOT_TOKEN")
	if tok == "" {
		return "", fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	return tok, nil
}
