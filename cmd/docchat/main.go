// Command docchat serves the retrieval-augmented chat API: sessions
// upload a prebuilt vector-index archive, pick a response language, and
// ask questions answered by a locally hosted model.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docchat/internal/api"
	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/llm"
	"docchat/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	embedder, err := embedding.NewOllama(cfg.LLMBaseURL, cfg.EmbeddingsModelName)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llm.New(cfg.LLMBaseURL, cfg.LLMModelName, cfg.LLMTemperature)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing LLM client")
	}

	manager := session.NewManager(cfg.VectorstoresDir, cfg.SessionTTL)
	handler := api.NewHandler(manager, embedder, generator, cfg.NbRetrievedDocs, log.Logger)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: api.NewRouter(handler, log.Logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.ServerAddr).Str("model", cfg.LLMModelName).Msg("Starting docchat")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}
