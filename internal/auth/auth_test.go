package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-search-backend/internal/apperr"
)

var (
	testSecret = []byte("test-jwt-secret")
	testUser   = uuid.MustParse("0b9c7c2e-4b8e-4f5a-8f0e-5b1c2d3e4f50")
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer abc.def", "abc.def"},
		{"  Bearer   abc.def  ", "abc.def"},
		{"abc.def", "abc.def"},
		{"Bearer ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BearerToken(tt.header), "header %q", tt.header)
	}
}

func TestJWTResolver(t *testing.T) {
	r := NewJWTResolver(testSecret)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateToken(testSecret, testUser, time.Hour)
		require.NoError(t, err)

		uid, err := r.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, testUser, uid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken([]byte("other"), testUser, time.Hour)
		require.NoError(t, err)

		_, err = r.Resolve(ctx, token)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
		assert.Equal(t, MsgInvalidAuthorization, apperr.MessageOf(err, ""))
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken(testSecret, testUser, -time.Minute)
		require.NoError(t, err)

		_, err = r.Resolve(ctx, token)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	})

	t.Run("anon key has no subject", func(t *testing.T) {
		anon := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"role": "anon",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		token, err := anon.SignedString(testSecret)
		require.NoError(t, err)

		_, err = r.Resolve(ctx, token)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
		assert.ErrorIs(t, err, ErrNoSubject)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := r.Resolve(ctx, "not-a-jwt")
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	resolver := NewJWTResolver(testSecret)
	token, err := GenerateToken(testSecret, testUser, time.Hour)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		_, err := Authenticate(ctx, resolver, "")
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
		assert.Equal(t, MsgAuthorizationRequired, apperr.MessageOf(err, ""))
	})

	t.Run("scheme only", func(t *testing.T) {
		_, err := Authenticate(ctx, resolver, "Bearer ")
		assert.Equal(t, MsgInvalidAuthorization, apperr.MessageOf(err, ""))
	})

	t.Run("valid", func(t *testing.T) {
		id, err := Authenticate(ctx, resolver, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, testUser, id.UserID)
		assert.Equal(t, token, id.Token)
	})

	t.Run("resolver transport failure is not an auth failure", func(t *testing.T) {
		failing := ResolverFunc(func(context.Context, string) (uuid.UUID, error) {
			return uuid.Nil, errors.New("dial tcp: refused")
		})
		_, err := Authenticate(ctx, failing, "Bearer x")
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	})

	t.Run("nil user", func(t *testing.T) {
		empty := ResolverFunc(func(context.Context, string) (uuid.UUID, error) {
			return uuid.Nil, nil
		})
		_, err := Authenticate(ctx, empty, "Bearer x")
		assert.Equal(t, MsgInvalidAuthorization, apperr.MessageOf(err, ""))
	})
}

func TestRemoteResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"` + testUser.String() + `","email":"u@example.com"}`))
		case "Bearer broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	}))
	defer srv.Close()

	r := NewRemoteResolver(srv.URL+"/", "service-key", srv.Client())
	ctx := context.Background()

	uid, err := r.Resolve(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, testUser, uid)

	_, err = r.Resolve(ctx, "bad")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	_, err = r.Resolve(ctx, "broken")
	require.Error(t, err)
	assert.NotEqual(t, apperr.KindAuth, apperr.KindOf(err))
}
