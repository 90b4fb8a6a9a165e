package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	domainuser "stayadmin/internal/domain/user"
	"stayadmin/internal/infra/security"
)

const principalContextKey = "stayadmin.principal"

type principal struct {
	ID    uint
	Email string
	Name  string
	Role  string
}

func (p principal) IsSuperAdmin() bool {
	return p.Role == string(domainuser.RoleSuperAdmin)
}

// AuthMiddleware resolves the bearer token into a request principal. A
// missing or bad token only leaves the principal unset; the route guards
// decide whether that is fatal.
type AuthMiddleware struct {
	Tokens security.TokenIssuer
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.Next()
		return
	}
	claims, err := m.Tokens.Verify(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, principal{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func requireSuperAdmin(c *gin.Context) (principal, bool) {
	p, ok := requireAuth(c)
	if !ok {
		return principal{}, false
	}
	if !p.IsSuperAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
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
