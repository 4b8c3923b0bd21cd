package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/chatcart/chatcart/chat/catalog"
	"github.com/chatcart/chatcart/chat/conversation"
	orchestratorx "github.com/chatcart/chatcart/chat/orchestrator"
	"github.com/chatcart/chatcart/chat/tenant"
	configx "github.com/chatcart/chatcart/pkg/config"
	llmx "github.com/chatcart/chatcart/pkg/llm"
	_ "github.com/chatcart/chatcart/pkg/logger/autoload"
	serverx "github.com/chatcart/chatcart/server"
)

type DatabaseConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	dbCfg := configx.MustNew[DatabaseConfig]("POSTGRES")
	catalogCfg := configx.MustNew[catalog.Config]("CATALOG")
	llmCfg := configx.MustNew[llmx.Config]("OPENAI")
	chatCfg := configx.MustNew[orchestratorx.Config]("CHAT")

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dbCfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	conversations := conversation.NewStore(db)
	stores := tenant.NewRepository(db)
	gateway := catalog.NewGateway(*catalogCfg)
	model := llmx.MustNew(*llmCfg)

	orch, err := orchestratorx.New(gateway, conversations, model, *chatCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	srv := serverx.New(*serverCfg, orch, gateway, conversations, stores)

	httpSrv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("chatcart backend listening")
	if err := runServer(ctx, httpSrv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
