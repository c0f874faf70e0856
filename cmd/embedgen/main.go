// Command embedgen is the offline batch job that turns the human-authored
// knowledge list into the embedded corpus artifact the server loads at
// startup. It can also push the corpus into a remote vector store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/foliokit/sage/pkg/corpus"
	"github.com/foliokit/sage/pkg/knowledge"
	knowledgeopenai "github.com/foliokit/sage/pkg/knowledge/openai"
	"github.com/foliokit/sage/pkg/knowledge/postgres"
	"github.com/foliokit/sage/pkg/knowledge/qdrant"
	"github.com/joho/godotenv"
)

const embedBatchSize = 16

type knowledgeEntry struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	knowledgePath := os.Getenv("KNOWLEDGE_PATH")
	if knowledgePath == "" {
		knowledgePath = "data/knowledge.json"
	}

	entries, err := readEntries(knowledgePath)
	if err != nil {
		log.Fatalf("Failed to read knowledge list: %v", err)
	}
	fmt.Printf("Loaded %d knowledge entries\n", len(entries))

	embedder := knowledgeopenai.NewEmbedder()

	records, err := embedEntries(ctx, embedder, entries)
	if err != nil {
		log.Fatalf("Failed to generate embeddings: %v", err)
	}

	// Validate before writing so a broken artifact never reaches the server.
	store, err := knowledge.NewStore(records)
	if err != nil {
		log.Fatalf("Generated corpus is invalid: %v", err)
	}

	sink, err := corpus.NewFactory(ctx, sinkConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to configure corpus sink: %v", err)
	}
	if err := sink.Store(ctx, records); err != nil {
		log.Fatalf("Failed to store corpus: %v", err)
	}
	fmt.Printf("Stored %d records (%d dimensions)\n", store.Len(), store.Dimension())

	if err := upsertVectorStore(ctx, records, store.Dimension()); err != nil {
		log.Fatalf("Failed to upsert vector store: %v", err)
	}
}

func readEntries(path string) ([]knowledgeEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []knowledgeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("malformed knowledge list: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("knowledge list is empty")
	}
	return entries, nil
}

func embedEntries(ctx context.Context, embedder knowledge.Embedder, entries []knowledgeEntry) ([]knowledge.Record, error) {
	records := make([]knowledge.Record, 0, len(entries))

	for start := 0; start < len(entries); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		texts := make([]string, len(batch))
		for i, entry := range batch {
			texts[i] = entry.Text
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("batch starting at %d: %w", start, err)
		}

		for i, entry := range batch {
			records = append(records, knowledge.Record{
				ID:        entry.ID,
				Topic:     entry.Topic,
				Text:      entry.Text,
				Embedding: vectors[i],
			})
			fmt.Printf("Embedded %s (%d dimensions)\n", entry.ID, len(vectors[i]))
		}

		// Stay under the embedding service rate limits.
		if end < len(entries) {
			time.Sleep(200 * time.Millisecond)
		}
	}

	return records, nil
}

func sinkConfigFromEnv() corpus.Config {
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

func upsertVectorStore(ctx context.Context, records []knowledge.Record, dim int) error {
	var upserter knowledge.Upserter

	switch os.Getenv("VECTOR_STORE") {
	case "":
		return nil

	case "qdrant":
		host := os.Getenv("QDRANT_HOST")
		if host == "" {
			host = "localhost"
		}
		port := 6334
		if p := os.Getenv("QDRANT_PORT"); p != "" {
			parsed, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("invalid QDRANT_PORT: %w", err)
			}
			port = parsed
		}
		store, err := qdrant.New(host, port, "sage_knowledge", uint64(dim))
		if err != nil {
			return err
		}
		upserter = store

	case "postgres":
		dsn := os.Getenv("POSTGRES_DSN")
		if dsn == "" {
			dsn = "host=localhost user=postgres password=postgres dbname=sage port=5432 sslmode=disable"
		}
		store, err := postgres.New(dsn)
		if err != nil {
			return err
		}
		upserter = store

	default:
		return fmt.Errorf("unsupported vector store: %s", os.Getenv("VECTOR_STORE"))
	}

	if err := upserter.Upsert(ctx, records); err != nil {
		return err
	}
	fmt.Println("Vector store upsert complete.")
	return nil
}
