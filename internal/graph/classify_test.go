package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		want       RelationshipType
	}{
		{"supersedes threshold is inclusive", 0.90, RelationshipSupersedes},
		{"just below supersedes relates", 0.899999, RelationshipRelatesTo},
		{"well above supersedes", 0.99, RelationshipSupersedes},
		{"relates threshold is inclusive", 0.75, RelationshipRelatesTo},
		{"just below relates is none", 0.749999, RelationshipNone},
		{"low similarity is none", 0.50, RelationshipNone},
		{"zero is none", 0, RelationshipNone},
		{"exact match supersedes", 1.0, RelationshipSupersedes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.similarity))
		})
	}
}
