package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"memgraph/internal/graph"
	"memgraph/internal/memstore"
	"memgraph/pkg/config"
	"memgraph/pkg/logger"
)

// Seeds the memory store with sample memories so the graph endpoints
// have something to show during development.
//
//	go run scripts/seed.go [-type note]
func main() {
	memoryType := flag.String("type", "note", "Memory type for the seeded entries")
	flag.Parse()

	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting memory seeding...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	var store graph.Store
	switch cfg.GraphBackend {
	case config.BackendNeo4j:
		store = graph.NewNeo4jStore(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	default:
		store = graph.NewBadgerStore(cfg.GraphDBPath)
	}
	if err := store.Open(); err != nil {
		log.Fatal("Failed to open graph store", zap.Error(err))
	}

	engine := graph.NewEngine(store)
	defer engine.Close()

	var embedder memstore.Embedder
	if cfg.OpenAIAPIKey != "" {
		embedder = memstore.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	} else {
		log.Warn("OPENAI_API_KEY not set, using the local embedder")
		embedder = memstore.NewLocalEmbedder()
	}

	memories, err := memstore.New(engine, embedder, memstore.Options{
		Path:        cfg.MemoryStorePath,
		SearchLimit: cfg.SimilarSearchLimit,
	})
	if err != nil {
		log.Fatal("Failed to open memory store", zap.Error(err))
	}
	defer memories.Close()

	samples := []string{
		"The weekly sync moved from Tuesday to Wednesday at 10am",
		"The weekly sync moved from Wednesday to Thursday at 10am",
		"Project Atlas launch is scheduled for the first week of October",
		"Project Atlas launch slipped to mid October due to the load test findings",
		"The staging database credentials rotate on the first of every month",
		"Grocery list: oat milk, coffee beans, rye bread",
	}

	ctx := context.Background()
	for _, content := range samples {
		stored, err := memories.Store(ctx, content, *memoryType)
		if err != nil {
			log.Error("Failed to store sample memory", zap.Error(err))
			continue
		}
		log.Info("Seeded memory",
			zap.String("hash", stored.Hash[:16]),
			zap.Bool("duplicate", stored.Duplicate),
			zap.Int("relates_to", len(stored.Sync.RelatesTo)),
			zap.Int("supersedes", len(stored.Sync.Supersedes)),
		)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		log.Fatal("Failed to read graph stats", zap.Error(err))
	}
	log.Info("Seeding complete",
		zap.Int64("nodes", stats.Nodes),
		zap.Int64("edges", stats.TotalEdges),
	)
}
