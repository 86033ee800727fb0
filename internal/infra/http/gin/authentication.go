package ginserver

import (
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	domainauth "stayhub/internal/domain/auth"
)

const (
	actorContextKey     = "stayhub.actor"
	authErrorContextKey = "stayhub.auth_error"
)

// TokenResolver turns a bearer token into the acting user.
type TokenResolver interface {
	Authenticate(token string) (*domainauth.Actor, error)
}

type AuthMiddleware struct {
	Service TokenResolver
	Logger  *slog.Logger
}

// Handle attaches the actor when a valid bearer token is present. Anonymous
// requests pass through; the failure is kept for Require.
func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	actor, err := m.Service.Authenticate(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Set(authErrorContextKey, err)
		c.Next()
		return
	}
	c.Set(actorContextKey, actor)
	c.Next()
}

// Require rejects requests without a resolved actor with 401.
func (m AuthMiddleware) Require(c *gin.Context) {
	if currentActor(c) != nil {
		c.Next()
		return
	}
	var err error = domainauth.ErrTokenRequired
	if stored, ok := c.Get(authErrorContextKey); ok {
		if e, ok := stored.(error); ok {
			err = e
		}
	}
	respondError(c, m.Logger, err)
	c.Abort()
}

func currentActor(c *gin.Context) *domainauth.Actor {
	val, ok := c.Get(actorContextKey)
	if !ok {
		return nil
	}
	actor, _ := val.(*domainauth.Actor)
	return actor
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
