package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blogramhq/blogram/internal/account"
	accountrepo "github.com/blogramhq/blogram/internal/account/repo"
	"github.com/blogramhq/blogram/internal/events"
	"github.com/blogramhq/blogram/internal/post"
	postrepo "github.com/blogramhq/blogram/internal/post/repo"
	"github.com/blogramhq/blogram/internal/router"
	"github.com/blogramhq/blogram/pkg/database"
	"github.com/blogramhq/blogram/pkg/token"
	"github.com/blogramhq/blogram/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting blogram api")

	// init db
	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// repositories; table creation is idempotent and ordered by FK deps
	accounts := accountrepo.NewAccountRepo(db)
	profiles := accountrepo.NewProfileRepo(db)
	posts := postrepo.NewPostRepo(db)

	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSetup()
	for _, ensure := range []func(context.Context) error{
		accounts.EnsureTable, profiles.EnsureTable, posts.EnsureTable,
	} {
		if err := ensure(setupCtx); err != nil {
			sugar.Fatalf("ensure tables: %v", err)
		}
	}

	tokens, err := token.NewManagerFromEnv()
	if err != nil {
		sugar.Fatalf("token manager: %v", err)
	}

	// optional post event publisher; nil when NATS_URL is unset
	publisher, err := events.NewPublisherFromEnv(sugar)
	if err != nil {
		sugar.Fatalf("nats connect: %v", err)
	}
	defer publisher.Close()

	accountSvc := account.NewService(accounts, profiles, nil)
	postSvc := post.NewService(posts, publisher)

	accountHandler := account.NewHandler(accountSvc, postSvc, tokens, sugar)
	postHandler := post.NewHandler(postSvc, sugar)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: router.RegisterRoutes(sugar, tokens, accountHandler, postHandler),
	}

	// run server in background
	go func() {
		sugar.Infow("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
