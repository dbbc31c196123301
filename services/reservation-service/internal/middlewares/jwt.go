package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/policy"
)

const (
	ctxUser  = "user"
	ctxActor = "actor"
)

// Authenticator resolves a bearer token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// resolved user and actor on the gin context.
func JWTAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		scheme, tok, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
			unauthorized(c, "Not authenticated")
			return
		}
		u, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(tok))
		if err != nil {
			unauthorized(c, "Could not validate credentials")
			return
		}
		c.Set(ctxUser, u)
		c.Set(ctxActor, policy.Actor{ID: u.ID, IsAdmin: u.IsAdmin})
		c.Next()
	}
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

// ActorFrom returns the actor set by JWTAuth.
func ActorFrom(c *gin.Context) (policy.Actor, bool) {
	v, ok := c.Get(ctxActor)
	if !ok {
		return policy.Actor{}, false
	}
	a, ok := v.(policy.Actor)
	return a, ok
}

func UserFrom(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}
