package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"memgraph/internal/graph"
	"memgraph/internal/memstore"
	"memgraph/internal/server"
	"memgraph/pkg/config"
	"memgraph/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting memory provenance server...")

	// Initialize the graph store backend
	var store graph.Store
	switch cfg.GraphBackend {
	case config.BackendNeo4j:
		store = graph.NewNeo4jStore(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	default:
		store = graph.NewBadgerStore(cfg.GraphDBPath)
	}

	// Open eagerly so lock contention or a bad path fails fast
	if err := store.Open(); err != nil {
		log.Fatal("Failed to open graph store", zap.Error(err))
	}

	engine := graph.NewEngine(store)
	defer func() {
		if err := engine.Close(); err != nil {
			log.Error("Failed to close graph store", zap.Error(err))
		}
	}()

	// Initialize the memory store collaborator
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

	// Setup HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.New(engine, memories).Router(),
	}

	g, gctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		log.Info("Server started",
			zap.String("port", cfg.Port),
			zap.String("graph_backend", cfg.GraphBackend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-quit:
		case <-gctx.Done():
			return nil
		}

		log.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", zap.Error(err))
	}

	log.Info("Server exited")
}
