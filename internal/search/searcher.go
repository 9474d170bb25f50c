package search

import (
	"context"

	"github.com/google/uuid"

	"task-search-backend/internal/tasks"
)

const (
	DefaultThreshold  = 0.7
	DefaultMatchCount = 5
)

// Query is one call to search_tasks_by_similarity on behalf of a user.
// Token is the caller's access token; implementations use it or UserID
// so the backend's row-level policies limit results to the caller's tasks.
type Query struct {
	UserID    uuid.UUID
	Token     string
	Embedding []float32
	Threshold float64
	Limit     int
}

// SimilaritySearcher returns tasks ranked by similarity, best first.
type SimilaritySearcher interface {
	Search(ctx context.Context, q Query) ([]tasks.ScoredTask, error)
}

type SearcherFunc func(ctx context.Context, q Query) ([]tasks.ScoredTask, error)

func (f SearcherFunc) Search(ctx context.Context, q Query) ([]tasks.ScoredTask, error) {
	return f(ctx, q)
}
