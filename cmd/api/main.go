package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/healthchat/internal/config"
	"github.com/zhouzirui/healthchat/internal/handler"
	"github.com/zhouzirui/healthchat/internal/model/knowledge"
	"github.com/zhouzirui/healthchat/internal/service/ai"
	"github.com/zhouzirui/healthchat/internal/service/answer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.SetupLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, os.Getenv("LOG_LEVEL"))

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("failed to load .env file, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	zerolog.SetGlobalLevel(config.ParseZerologLevel(cfg.Server.LogLevel))

	entries := knowledge.Seed()
	if cfg.Server.KnowledgeFile != "" {
		entries, err = knowledge.LoadFile(cfg.Server.KnowledgeFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load knowledge file")
		}
	}
	store := knowledge.NewMemoryStore(entries)

	var qa answer.QA
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, store)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize QA fallback, continuing without it")
		} else {
			qa = aiService
			log.Info().Str("model", cfg.AI.Model).Msg("QA fallback initialized")
		}
	} else {
		log.Info().Msg("ark credentials not configured, QA fallback disabled")
	}

	answers, err := answer.NewService(store, qa)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build answer service")
	}
	counts := answers.Entries()
	log.Info().
		Int("kb", counts[knowledge.KindKB]).
		Int("glossary", counts[knowledge.KindGlossary]).
		Int("medicines", counts[knowledge.KindMedicine]).
		Msg("knowledge base loaded")

	router := handler.NewRouter(answers)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("health chat backend listening")
	if err := runServer(ctx, srv); err != nil {
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
