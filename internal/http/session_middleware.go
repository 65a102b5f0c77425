package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"filedrive/internal/domain"
)

const identityKey = "identity"

// SessionParser traduce un token de sesion a la identidad del caller.
type SessionParser interface {
	Configured() bool
	ParseSessionToken(token string) (domain.Identity, error)
}

// SessionMiddleware resuelve la identidad del caller si manda un bearer token.
// Sin token el request sigue como anonimo; un token invalido corta con 401.
func SessionMiddleware(sessions SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		if sessions == nil || !sessions.Configured() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session verification not configured"})
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		identity, err := sessions.ParseSessionToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// GetIdentity obtiene la identidad autenticada desde el contexto, si la hay.
func GetIdentity(c *gin.Context) (*domain.Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := val.(domain.Identity)
	if !ok {
		return nil, false
	}
	return &identity, true
}
