package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"task-search-backend/internal/apperr"
)

const (
	MsgAuthorizationRequired = "Authorization required"
	MsgInvalidAuthorization  = "Invalid authorization"
)

// Resolver turns a bearer token into the id of the user it was issued to.
// Tokens that do not belong to a user yield an apperr.KindAuth error.
type Resolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

type ResolverFunc func(ctx context.Context, token string) (uuid.UUID, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	return f(ctx, token)
}

type Identity struct {
	UserID uuid.UUID
	Token  string
}

// BearerToken strips the "Bearer " scheme. A header without the scheme is taken as the raw token.
func BearerToken(header string) string {
	h := strings.TrimSpace(header)
	if len(h) >= 7 && strings.EqualFold(h[:7], "Bearer ") {
		h = h[7:]
	}
	return strings.TrimSpace(h)
}

// Authenticate resolves the Authorization header value to an Identity.
func Authenticate(ctx context.Context, r Resolver, header string) (Identity, error) {
	if strings.TrimSpace(header) == "" {
		return Identity{}, apperr.Auth(MsgAuthorizationRequired)
	}

	token := BearerToken(header)
	if token == "" {
		return Identity{}, apperr.Auth(MsgInvalidAuthorization)
	}

	uid, err := r.Resolve(ctx, token)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			return Identity{}, err
		}
		return Identity{}, apperr.Wrap(apperr.KindUpstream, "resolve user", err)
	}
	if uid == uuid.Nil {
		return Identity{}, apperr.Auth(MsgInvalidAuthorization)
	}

	return Identity{UserID: uid, Token: token}, nil
}
