package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-search-backend/internal/apperr"
	"task-search-backend/internal/profiles"
)

func TestNew_RequiresURLAndKey(t *testing.T) {
	_, err := New("", "anon")
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = New("https://example.supabase.co", "  ")
	assert.ErrorIs(t, err, ErrMissingAnonKey)

	c, err := New("https://example.supabase.co/", "anon")
	require.NoError(t, err)
	assert.Equal(t, "https://example.supabase.co", c.baseURL)
}

func TestSmartSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, smartSearchPath, r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "buy milk", body["query"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"results":[{"id":"6f1d1a52-7b3c-4d4e-9a8f-0c1d2e3f4a5b","title":"Buy groceries","priority":"medium","status":"pending","user_id":"0b9c7c2e-4b8e-4f5a-8f0e-5b1c2d3e4f50","created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z","similarity":0.81}],"query":"buy milk"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "anon")
	require.NoError(t, err)

	res, err := c.SmartSearch(context.Background(), "user-token", "buy milk")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", res.Query)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Buy groceries", res.Results[0].Title)
	assert.InDelta(t, 0.81, res.Results[0].Similarity, 1e-9)
}

func TestSmartSearch_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":null,"query":"x"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "anon")
	require.NoError(t, err)

	res, err := c.SmartSearch(context.Background(), "t", "x")
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
}

func TestSmartSearch_ErrorKinds(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    apperr.Kind
		message string
	}{
		{http.StatusBadRequest, `{"error":"Query is required"}`, apperr.KindValidation, "Query is required"},
		{http.StatusUnauthorized, `{"error":"Invalid authorization"}`, apperr.KindAuth, "Invalid authorization"},
		{http.StatusNotFound, `not json`, apperr.KindNotFound, "Not Found"},
		{http.StatusInternalServerError, `{"error":"Search failed"}`, apperr.KindUpstream, "Search failed"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, err := New(srv.URL, "anon")
			require.NoError(t, err)

			_, err = c.SmartSearch(context.Background(), "t", "q")
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Equal(t, tt.message, apperr.MessageOf(err, ""))
		})
	}
}

func TestSmartSearch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, "anon")
	require.NoError(t, err)

	_, err = c.SmartSearch(context.Background(), "t", "q")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestSuggestSubtasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, generateSubtasksPath, r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Plan trip", body["taskTitle"])

		_, _ = io.WriteString(w, `{"subtasks":["Pick dates","Book flights"]}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "anon")
	require.NoError(t, err)

	got, err := c.SuggestSubtasks(context.Background(), "t", "Plan trip")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pick dates", "Book flights"}, got)
}

func TestUploadAvatar(t *testing.T) {
	user := uuid.MustParse("0b9c7c2e-4b8e-4f5a-8f0e-5b1c2d3e4f50")
	png := []byte("\x89PNG\r\n\x1a\n0000")
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var calls []string
	var profile map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/storage/v1/object/profile-pictures/" + user.String() + "/avatar.png":
			assert.Equal(t, "true", r.Header.Get("x-upsert"))
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, png, data)
			_, _ = io.WriteString(w, `{"Key":"profile-pictures/x"}`)
		case profilesPath:
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "resolution=merge-duplicates,return=minimal", r.Header.Get("Prefer"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&profile))
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL, "anon")
	require.NoError(t, err)
	c.now = func() time.Time { return now }

	url, err := c.UploadAvatar(context.Background(), "t", user, "me.PNG", png)
	require.NoError(t, err)

	want := srv.URL + "/storage/v1/object/public/profile-pictures/" + user.String() + "/avatar.png"
	assert.Equal(t, want, url)
	assert.Len(t, calls, 2)
	assert.Equal(t, map[string]any{
		"id":         user.String(),
		"avatar_url": want,
		"updated_at": "2025-03-01T12:00:00Z",
	}, profile)
}

func TestUploadAvatar_ProfileUpsertFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == profilesPath {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"message":"new row violates row-level security policy"}`)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "anon")
	require.NoError(t, err)

	_, err = c.UploadAvatar(context.Background(), "t", uuid.New(), "me.gif", []byte("GIF89a...."))
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.Equal(t, "new row violates row-level security policy", apperr.MessageOf(err, ""))
}

func TestUploadAvatar_Validation(t *testing.T) {
	c, err := New("https://example.supabase.co", "anon")
	require.NoError(t, err)

	// a .png name does not make text an image
	_, err = c.UploadAvatar(context.Background(), "t", uuid.New(), "notes.png", []byte("just some text"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Please select an image file", apperr.MessageOf(err, ""))

	big := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, profiles.MaxAvatarBytes)...)
	_, err = c.UploadAvatar(context.Background(), "t", uuid.New(), "me.png", big)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "File size must be less than 5MB", apperr.MessageOf(err, ""))
}
