package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"task-search-backend/internal/tasks"
)

// RPCSearcher calls the similarity procedure through the platform's REST RPC
// endpoint, forwarding the caller's access token.
type RPCSearcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRPCSearcher(baseURL, apiKey string, client *http.Client) *RPCSearcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &RPCSearcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// rpcRow keeps Similarity optional so a procedure that stops returning the
// column fails the search instead of scoring every row 0.
type rpcRow struct {
	tasks.Task
	Similarity *float64 `json:"similarity"`
}

var ErrMissingSimilarity = errors.New("rpc result row has no similarity")

type rpcArgs struct {
	QueryEmbedding      []float32 `json:"query_embedding"`
	SimilarityThreshold float64   `json:"similarity_threshold"`
	MatchCount          int       `json:"match_count"`
}

func (s *RPCSearcher) Search(ctx context.Context, q Query) ([]tasks.ScoredTask, error) {
	body, err := json.Marshal(rpcArgs{
		QueryEmbedding:      q.Embedding,
		SimilarityThreshold: q.Threshold,
		MatchCount:          q.Limit,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/rest/v1/rpc/search_tasks_by_similarity",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+q.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("rpc search_tasks_by_similarity: status %d: %s", res.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var rows []rpcRow
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rpc result: %w", err)
	}

	out := make([]tasks.ScoredTask, 0, len(rows))
	for _, row := range rows {
		if row.Similarity == nil {
			return nil, fmt.Errorf("task %s: %w", row.ID, ErrMissingSimilarity)
		}
		out = append(out, tasks.ScoredTask{Task: row.Task, Similarity: *row.Similarity})
	}
	return out, nil
}
