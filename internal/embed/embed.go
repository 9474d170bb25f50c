package embed

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

var ErrEmptyEmbedding = errors.New("embedder returned an empty vector")

// Embedder turns text into a fixed-length, unit-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Config struct {
	Host   string
	Model  string
	APIKey string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("embedding host is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("embedding model is required")
	}
	return nil
}

// LangchainEmbedder calls an OpenAI-compatible embeddings endpoint through langchaingo.
// The model is expected to mean-pool token vectors; the result is normalized here.
type LangchainEmbedder struct {
	embedder embeddings.Embedder
	logger   *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*LangchainEmbedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	token := cfg.APIKey
	if token == "" {
		// local OpenAI-compatible servers do not check the token
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.Host),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}

	e, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return NewWithEmbedder(e, logger), nil
}

func NewWithEmbedder(e embeddings.Embedder, logger *zap.Logger) *LangchainEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LangchainEmbedder{
		embedder: e,
		logger:   logger.With(zap.String("component", "embedder")),
	}
}

func (e *LangchainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating query embedding", zap.Int("length", len(text)))

	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("failed to generate embedding", zap.Error(err))
		return nil, err
	}
	if len(vec) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return Normalize(vec), nil
}

// Normalize scales v to unit L2 length in place and returns it. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
