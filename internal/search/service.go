package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"task-search-backend/internal/apperr"
	"task-search-backend/internal/auth"
	"task-search-backend/internal/embed"
	"task-search-backend/internal/tasks"
)

const (
	MsgQueryRequired  = "Query is required"
	MsgConfigMissing  = "Supabase configuration missing"
	MsgSearchFailed   = "Search failed"
	MsgInternalError  = "Internal server error"
	MsgMethodNotAllow = "Method not allowed"
)

type Result struct {
	Results []tasks.ScoredTask `json:"results"`
	Query   string             `json:"query"`
}

// Deps are the external collaborators of a Service. Configured is false when
// the platform URL or service key is missing; the others may then be nil.
type Deps struct {
	Configured bool
	Resolver   auth.Resolver
	Embedder   embed.Embedder
	Searcher   SimilaritySearcher
}

type Service struct {
	deps   Deps
	logger *zap.Logger
}

type Option func(*Service)

// WithLogger sets a custom logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(deps Deps, opts ...Option) *Service {
	s := &Service{
		deps:   deps,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) configured() bool {
	return s.deps.Configured && s.deps.Resolver != nil && s.deps.Embedder != nil && s.deps.Searcher != nil
}

// Search ranks the caller's tasks against query. authHeader is the raw
// Authorization header value. Errors are *apperr.Error with a caller-visible message.
func (s *Service) Search(ctx context.Context, authHeader, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, apperr.Validation(MsgQueryRequired)
	}

	if !s.configured() {
		return Result{}, apperr.Config(MsgConfigMissing)
	}

	id, err := auth.Authenticate(ctx, s.deps.Resolver, authHeader)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			return Result{}, err
		}
		return Result{}, apperr.Wrap(apperr.KindInternal, MsgInternalError, err)
	}

	vec, err := s.deps.Embedder.Embed(ctx, query)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, MsgInternalError, err)
	}

	rows, err := s.deps.Searcher.Search(ctx, Query{
		UserID:    id.UserID,
		Token:     id.Token,
		Embedding: vec,
		Threshold: DefaultThreshold,
		Limit:     DefaultMatchCount,
	})
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindUpstream, MsgSearchFailed, err)
	}

	results := make([]tasks.ScoredTask, 0, len(rows))
	for _, row := range rows {
		if row.Similarity < DefaultThreshold {
			continue
		}
		results = append(results, row)
		if len(results) == DefaultMatchCount {
			break
		}
	}

	s.logger.Debug("search completed",
		zap.String("user_id", id.UserID.String()),
		zap.Int("query_len", len(query)),
		zap.Int("results", len(results)),
	)

	return Result{Results: results, Query: query}, nil
}
