package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	accountrepo "github.com/blogramhq/blogram/internal/account/repo"
	"github.com/blogramhq/blogram/internal/bot"
	"github.com/blogramhq/blogram/internal/link"
	"github.com/blogramhq/blogram/internal/post"
	postrepo "github.com/blogramhq/blogram/internal/post/repo"
	"github.com/blogramhq/blogram/internal/stats"
	"github.com/blogramhq/blogram/pkg/database"
	"github.com/blogramhq/blogram/pkg/utilities"
)

func main() {
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting blogram bot")

	// the bot token is the single required secret for this entry point
	botToken, err := bot.TokenFromEnv(os.Getenv)
	if err != nil {
		sugar.Fatalf("bot token: %v", err)
	}

	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	accounts := accountrepo.NewAccountRepo(db)
	profiles := accountrepo.NewProfileRepo(db)
	posts := postrepo.NewPostRepo(db)

	// the bot may start before the api has ever run; ensure the schema so
	// first-time links and digests do not fail on missing tables
	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSetup()
	for _, ensure := range []func(context.Context) error{
		accounts.EnsureTable, profiles.EnsureTable, posts.EnsureTable,
	} {
		if err := ensure(setupCtx); err != nil {
			sugar.Fatalf("ensure tables: %v", err)
		}
	}

	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		sugar.Fatalf("telegram connect: %v", err)
	}

	linker := link.NewLinker(accounts, profiles)
	aggregator := stats.NewAggregator(accounts, profiles, posts)
	postSvc := post.NewService(posts, nil)

	dispatcher := bot.NewDispatcher(api, linker, aggregator, postSvc, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatcher.Run(ctx); err != nil {
		sugar.Fatalf("dispatcher: %v", err)
	}

	sugar.Info("goodbye")
}
