package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "GRAPH_BACKEND", "GRAPH_DB_PATH",
		"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD",
		"MEMORY_STORE_PATH", "SIMILAR_SEARCH_LIMIT",
		"OPENAI_API_KEY", "EMBEDDING_MODEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, BackendEmbedded, cfg.GraphBackend)
	assert.NotEmpty(t, cfg.GraphDBPath)
	assert.NotEmpty(t, cfg.MemoryStorePath)
	assert.Equal(t, 10, cfg.SimilarSearchLimit)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("GRAPH_BACKEND", BackendNeo4j)
	t.Setenv("NEO4J_URI", "bolt://graph:7687")
	t.Setenv("NEO4J_USER", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("SIMILAR_SEARCH_LIMIT", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, BackendNeo4j, cfg.GraphBackend)
	assert.Equal(t, "bolt://graph:7687", cfg.Neo4jURI)
	assert.Equal(t, 25, cfg.SimilarSearchLimit)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			GraphBackend:       BackendEmbedded,
			GraphDBPath:        "/tmp/graph",
			MemoryStorePath:    "/tmp/memories",
			SimilarSearchLimit: 10,
		}
	}

	t.Run("valid embedded", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("embedded requires path", func(t *testing.T) {
		cfg := base()
		cfg.GraphDBPath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.GraphBackend = "dgraph"
		assert.Error(t, cfg.Validate())
	})

	t.Run("neo4j requires credentials", func(t *testing.T) {
		cfg := base()
		cfg.GraphBackend = BackendNeo4j
		cfg.Neo4jURI = "bolt://localhost:7687"
		cfg.Neo4jUser = "neo4j"
		assert.Error(t, cfg.Validate(), "missing password must fail")

		cfg.Neo4jPassword = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("search limit must be positive", func(t *testing.T) {
		cfg := base()
		cfg.SimilarSearchLimit = 0
		assert.Error(t, cfg.Validate())
	})
}
