package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Graph backend identifiers
const (
	BackendEmbedded = "embedded"
	BackendNeo4j    = "neo4j"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Graph store
	GraphBackend string // embedded | neo4j
	GraphDBPath  string // data directory for the embedded store

	// Neo4j (only used when GraphBackend == neo4j)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Memory store
	MemoryStorePath    string
	SimilarSearchLimit int // candidates requested from the vector search

	// Embeddings
	OpenAIAPIKey   string
	EmbeddingModel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	dataDir := defaultDataDir()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		GraphBackend:       getEnv("GRAPH_BACKEND", BackendEmbedded),
		GraphDBPath:        getEnv("GRAPH_DB_PATH", filepath.Join(dataDir, "graph")),
		Neo4jURI:           getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:      getEnv("NEO4J_PASSWORD", ""),
		MemoryStorePath:    getEnv("MEMORY_STORE_PATH", filepath.Join(dataDir, "memories")),
		SimilarSearchLimit: getEnvInt("SIMILAR_SEARCH_LIMIT", 10),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.GraphBackend {
	case BackendEmbedded:
		if c.GraphDBPath == "" {
			return fmt.Errorf("GRAPH_DB_PATH is required for the embedded backend")
		}
	case BackendNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI is required for the neo4j backend")
		}
		if c.Neo4jUser == "" {
			return fmt.Errorf("NEO4J_USER is required for the neo4j backend")
		}
		if c.Neo4jPassword == "" {
			return fmt.Errorf("NEO4J_PASSWORD is required for the neo4j backend")
		}
	default:
		return fmt.Errorf("unknown GRAPH_BACKEND: %s", c.GraphBackend)
	}
	if c.MemoryStorePath == "" {
		return fmt.Errorf("MEMORY_STORE_PATH is required")
	}
	if c.SimilarSearchLimit < 1 {
		return fmt.Errorf("SIMILAR_SEARCH_LIMIT must be positive")
	}
	// OpenAI key is optional; without it the local embedder is used
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// defaultDataDir returns the per-user application data directory
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".memgraph"
	}
	return filepath.Join(home, ".local", "share", "memgraph")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
