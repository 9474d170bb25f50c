package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"task-search-backend/internal/apperr"
	"task-search-backend/internal/profiles"
	"task-search-backend/internal/tasks"
)

const (
	smartSearchPath      = "/functions/v1/smart-search"
	generateSubtasksPath = "/functions/v1/generate-subtasks"
	storageObjectPath    = "/storage/v1/object/"
	profilesPath         = "/rest/v1/profiles"

	defaultTimeout = 30 * time.Second
)

var (
	ErrMissingURL     = errors.New("SUPABASE_URL is required")
	ErrMissingAnonKey = errors.New("SUPABASE_ANON_KEY is required")
)

type SearchResult struct {
	Results []tasks.ScoredTask `json:"results"`
	Query   string             `json:"query"`
}

// Client calls the task functions on behalf of a signed-in user.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL, anonKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingURL
	}
	if strings.TrimSpace(anonKey) == "" {
		return nil, ErrMissingAnonKey
	}

	c := &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) SmartSearch(ctx context.Context, accessToken, query string) (SearchResult, error) {
	var out SearchResult
	err := c.postJSON(ctx, smartSearchPath, accessToken, map[string]string{"query": query}, &out)
	if err != nil {
		return SearchResult{}, err
	}
	if out.Results == nil {
		out.Results = []tasks.ScoredTask{}
	}
	return out, nil
}

func (c *Client) SuggestSubtasks(ctx context.Context, accessToken, taskTitle string) ([]string, error) {
	var out struct {
		Subtasks []string `json:"subtasks"`
	}
	err := c.postJSON(ctx, generateSubtasksPath, accessToken, map[string]string{"taskTitle": taskTitle}, &out)
	if err != nil {
		return nil, err
	}
	return out.Subtasks, nil
}

// UploadAvatar stores image under the user's avatar key, replacing any
// previous upload, points the user's profile at it and returns the public URL.
func (c *Client) UploadAvatar(ctx context.Context, accessToken string, userID uuid.UUID, filename string, image []byte) (string, error) {
	contentType := http.DetectContentType(image)
	if err := profiles.ValidateAvatarType(contentType); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, profiles.MsgAvatarType, err)
	}
	if err := profiles.ValidateAvatarSize(int64(len(image))); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, profiles.MsgAvatarSize, err)
	}
	key, err := profiles.AvatarObjectKey(userID, filename, contentType)
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, profiles.MsgAvatarType, err)
	}

	url := c.baseURL + storageObjectPath + profiles.AvatarBucket + "/" + key
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "build request", err)
	}
	c.setAuth(req, accessToken)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	if err := c.do(req, nil); err != nil {
		return "", err
	}

	publicURL := profiles.PublicAvatarURL(c.baseURL, key)
	if err := c.UpsertProfile(ctx, accessToken, profiles.AvatarUpdate(userID, publicURL, c.now())); err != nil {
		return "", err
	}
	return publicURL, nil
}

// UpsertProfile inserts p or merges it into the existing row with the same id.
func (c *Client) UpsertProfile(ctx context.Context, accessToken string, p profiles.Profile) error {
	body, err := json.Marshal(p)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "marshal profile", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+profilesPath, bytes.NewReader(body))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build request", err)
	}
	c.setAuth(req, accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	return c.do(req, nil)
}

func (c *Client) postJSON(ctx context.Context, path, accessToken string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "build request", err)
	}
	c.setAuth(req, accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, out)
}

func (c *Client) setAuth(req *http.Request, accessToken string) {
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "read response", err)
	}

	c.logger.Debug("function call",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return apperr.Wrap(apperr.FromStatus(resp.StatusCode), errorMessage(resp.StatusCode, data),
			fmt.Errorf("status %d", resp.StatusCode))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "decode response", err)
	}
	return nil
}

// errorMessage reads {"error": "..."} (functions) or {"message": "..."} (storage).
func errorMessage(status int, data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return http.StatusText(status)
}
