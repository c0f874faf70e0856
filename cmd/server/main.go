package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/foliokit/sage/pkg/assistant"
	"github.com/foliokit/sage/pkg/corpus"
	"github.com/foliokit/sage/pkg/httpapi"
	"github.com/foliokit/sage/pkg/knowledge"
	knowledgeopenai "github.com/foliokit/sage/pkg/knowledge/openai"
	llmopenai "github.com/foliokit/sage/pkg/llm/openai"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	source, err := corpus.NewFactory(ctx, corpusConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to configure corpus source: %v", err)
	}

	records, err := source.Fetch(ctx)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}

	store, err := knowledge.NewStore(records)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	slog.Info("corpus loaded", "records", store.Len(), "dimension", store.Dimension())

	embedder := knowledgeopenai.NewEmbedder()
	provider := llmopenai.New()

	opts := []assistant.Option{}
	if owner := os.Getenv("OWNER_NAME"); owner != "" {
		opts = append(opts, assistant.WithOwner(owner))
	}
	if os.Getenv("DEBUG") == "true" {
		opts = append(opts, assistant.WithDebug(true))
	}

	asst := assistant.New(embedder, store, provider, opts...)
	handler := httpapi.New(asst, store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	slog.Info("server listening", "addr", ":"+port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func corpusConfigFromEnv() corpus.Config {
	cfg := corpus.Config{
		Type:             corpus.TypeFile,
		Path:             "data/embeddings.json",
		ConnectionString: os.Getenv("CORPUS_DSN"),
		Username:         os.Getenv("CORPUS_USERNAME"),
		Password:         os.Getenv("CORPUS_PASSWORD"),
		DBName:           os.Getenv("CORPUS_DB_NAME"),
	}
	if t := os.Getenv("CORPUS_SOURCE"); t != "" {
		cfg.Type = corpus.Type(t)
	}
	if p := os.Getenv("CORPUS_PATH"); p != "" {
		cfg.Path = p
	}
	return cfg
}
