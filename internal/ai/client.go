package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const MaxSubtasks = 8

var (
	ErrNoChoices     = errors.New("model returned no choices")
	ErrNoSubtasks    = errors.New("model returned no subtasks")
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY is required")
)

type chatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client generates subtask suggestions with a chat model.
type Client struct {
	llm    chatModel
	Model  string
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return newClient(llm, cfg.Model, logger), nil
}

func newClient(llm chatModel, model string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		llm:    llm,
		Model:  model,
		logger: logger.With(zap.String("component", "subtask-generator")),
	}
}

func (c *Client) SuggestSubtasks(ctx context.Context, taskTitle string) ([]string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, subtaskSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildUserPrompt(taskTitle, MaxSubtasks)),
	}

	resp, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(0.2))
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	raw := resp.Choices[0].Content
	subtasks := ParseSubtasks(raw, MaxSubtasks)
	if len(subtasks) == 0 {
		c.logger.Warn("unusable model output", zap.Int("length", len(raw)))
		return nil, ErrNoSubtasks
	}

	c.logger.Debug("subtasks generated", zap.Int("count", len(subtasks)))
	return subtasks, nil
}

// ParseSubtasks accepts a JSON string array (optionally inside a code fence)
// or one item per line with bullets or numbering. Blank and duplicate items are
// dropped and the result is capped at limit.
func ParseSubtasks(raw string, limit int) []string {
	text := stripCodeFence(strings.TrimSpace(raw))

	var items []string
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
			items = nil
		}
	}
	if items == nil {
		items = strings.Split(text, "\n")
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		s := cleanItem(it)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func cleanItem(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*•")
	s = strings.TrimSpace(s)

	// "1." or "1)"
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		s = s[i+1:]
	}

	return strings.Trim(strings.TrimSpace(s), `"`)
}
