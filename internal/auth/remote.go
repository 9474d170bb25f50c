package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"task-search-backend/internal/apperr"
)

// RemoteResolver asks the platform's auth service who owns the token (GET /auth/v1/user).
type RemoteResolver struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRemoteResolver(baseURL, apiKey string, client *http.Client) *RemoteResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (r *RemoteResolver) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", r.apiKey)

	res, err := r.client.Do(req)
	if err != nil {
		return uuid.Nil, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return uuid.Nil, apperr.Auth(MsgInvalidAuthorization)
	case res.StatusCode != http.StatusOK:
		return uuid.Nil, fmt.Errorf("auth service returned %d", res.StatusCode)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&user); err != nil {
		return uuid.Nil, fmt.Errorf("decode user: %w", err)
	}

	uid, err := uuid.Parse(user.ID)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindAuth, MsgInvalidAuthorization, err)
	}
	return uid, nil
}
