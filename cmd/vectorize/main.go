// Command vectorize builds a document vector-index archive offline:
// documents are loaded, chunked, embedded, written to a persistent index
// and optionally zipped into the archive the docchat service consumes.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/loader"
	"docchat/internal/vectorstore"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to a single document")
	dirPath := flag.String("dir", "", "Directory of documents to vectorize recursively")
	outDir := flag.String("out", "./out", "Output directory for the index")
	zipPath := flag.String("zip", "", "Also write the index as a ZIP archive at this path")
	configPath := flag.String("config", "./configs/chunking.yaml", "Chunking config file")
	silent := flag.Bool("silent", false, "Log and skip unreadable documents instead of aborting")
	flag.Parse()

	if (*filePath == "") == (*dirPath == "") {
		log.Fatal().Msg("Provide exactly one of -file or -dir")
	}

	cfg, err := config.LoadVectorize()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	chunking, err := config.LoadChunking(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading chunking config")
	}

	ctx := context.Background()

	var pages []loader.Page
	if *filePath != "" {
		pages, err = loader.LoadFile(*filePath)
	} else {
		pages, err = loader.LoadDir(*dirPath, loader.Options{SilentErrors: *silent})
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading documents")
	}
	log.Info().Int("pages", len(pages)).Msg("Loaded documents")

	splitter, err := chunker.New(chunking.ChunkSize, chunking.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid chunking parameters")
	}
	chunks := splitter.Split(pages)
	log.Info().Int("chunks", len(chunks)).Msg("Chunked documents")

	embedder, err := embedding.NewOllama(cfg.LLMBaseURL, cfg.EmbeddingsModelName)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	vectors, err := embedding.EmbedChunks(ctx, embedder, chunks)
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating embeddings")
	}

	entries := make([]vectorstore.Entry, len(chunks))
	for i := range chunks {
		entries[i] = vectorstore.Entry{Embedding: vectors[i], Chunk: chunks[i]}
	}

	indexDir := filepath.Join(*outDir, vectorstore.DirName)
	if err := os.RemoveAll(indexDir); err != nil {
		log.Fatal().Err(err).Msg("Error clearing output directory")
	}
	if _, err := vectorstore.Build(ctx, indexDir, entries); err != nil {
		log.Fatal().Err(err).Msg("Error building vector index")
	}
	log.Info().Str("dir", indexDir).Int("entries", len(entries)).Msg("Built vector index")

	if *zipPath != "" {
		if err := vectorstore.WriteArchive(*zipPath, indexDir); err != nil {
			log.Fatal().Err(err).Msg("Error writing archive")
		}
		log.Info().Str("path", *zipPath).Msg("Wrote archive")
	}
}
