package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"planillas/internal/token"
	"planillas/pkg/response"
)

const (
	AccessTokenCookie = "access_token"
	UpgradeTokenParam = "token"

	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextClaims   = "claims"
)

// TokenParser verifies access tokens.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// Authenticator guards routes with the access token carried by cookie or Authorization header.
type Authenticator struct {
	tokens TokenParser
	// secure switches cookies to SameSite=None; Secure for cross-origin production deployments.
	secure bool
}

func NewAuthenticator(tokens TokenParser, secureCookies bool) *Authenticator {
	return &Authenticator{tokens: tokens, secure: secureCookies}
}

// SetTokenCookie stores the access token as an HttpOnly cookie.
func (a *Authenticator) SetTokenCookie(c *gin.Context, accessToken string, ttl time.Duration) {
	c.SetSameSite(a.sameSite())
	c.SetCookie(AccessTokenCookie, accessToken, int(ttl.Seconds()), "/", "", a.secure, true)
}

// ClearTokenCookie removes the access token cookie
func (a *Authenticator) ClearTokenCookie(c *gin.Context) {
	c.SetSameSite(a.sameSite())
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", a.secure, true)
}

func (a *Authenticator) sameSite() http.SameSite {
	if a.secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// RequireRole validates the token and checks the role against allowedRoles.
// With no roles, any authenticated user passes.
func (a *Authenticator) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := ExtractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Coded(http.StatusUnauthorized, "unauthenticated", "Authorization is missing"))
			return
		}

		claims, err := a.tokens.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Coded(http.StatusUnauthorized, "unauthenticated", "Invalid or expired token"))
			return
		}

		if len(allowedRoles) > 0 && !hasRole(claims.Role, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Coded(http.StatusForbidden, "forbidden", "Access denied: insufficient permissions"))
			return
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// Authenticate resolves the caller's claims without writing a response, for handlers
// such as /logout that authenticate on their own terms.
func (a *Authenticator) Authenticate(c *gin.Context) (*token.Claims, bool) {
	tokenString, ok := ExtractToken(c)
	if !ok {
		return nil, false
	}
	return a.parse(tokenString)
}

// AuthenticateUpgrade is Authenticate plus the token query parameter, which only websocket
// upgrades accept since browsers cannot set headers on them.
func (a *Authenticator) AuthenticateUpgrade(c *gin.Context) (*token.Claims, bool) {
	tokenString, ok := ExtractToken(c)
	if !ok {
		tokenString = c.Query(UpgradeTokenParam)
		if tokenString == "" {
			return nil, false
		}
	}
	return a.parse(tokenString)
}

func (a *Authenticator) parse(tokenString string) (*token.Claims, bool) {
	claims, err := a.tokens.Parse(tokenString)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// ExtractToken reads the cookie first, then the Bearer header.
func ExtractToken(c *gin.Context) (string, bool) {
	if tokenString, err := c.Cookie(AccessTokenCookie); err == nil && tokenString != "" {
		return tokenString, true
	}
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[1]), true
		}
	}
	return "", false
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// UserID returns the authenticated user id set by RequireRole.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func ClaimsFrom(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok
}
