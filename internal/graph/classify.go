package graph

// Classify maps a similarity score to the relationship an edge should
// carry. Very high similarity means the new content updates the old one;
// moderate similarity means topical relation. Thresholds are fixed,
// bands are inclusive at their lower edge, and the decision is
// deterministic per call.
func Classify(similarity float64) RelationshipType {
	switch {
	case similarity >= SupersedesThreshold:
		return RelationshipSupersedes
	case similarity >= RelatesToThreshold:
		return RelationshipRelatesTo
	default:
		return RelationshipNone
	}
}
