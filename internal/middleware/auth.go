package middleware

import (
	"context"
	"net/http"
	"strings"

	"pharmacare/internal/apierror"
	"pharmacare/internal/auth"
	"pharmacare/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	PrincipalKey = "principal"
)

// TokenBlacklist reports access token ids revoked by logout.
type TokenBlacklist interface {
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// JWTAuth validates the Bearer access token on every protected route and
// stores the resulting dto.Principal in the context. blacklist may be nil.
func JWTAuth(j *auth.JWT, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication required"))
			return
		}

		claims, err := j.Parse(strings.TrimPrefix(header, "Bearer "), auth.TypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
			return
		}
		principal, err := claims.Principal()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsAccessTokenBlacklisted(c.Request.Context(), principal.TokenID)
			if err != nil {
				// Fail open when Redis is unavailable.
				log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("token blacklist lookup failed")
			} else if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token has been revoked"))
				return
			}
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// RequireRole rejects requests whose principal carries none of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok || !p.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Access denied"))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the caller set by JWTAuth.
func GetPrincipal(c *gin.Context) (dto.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return dto.Principal{}, false
	}
	p, ok := v.(dto.Principal)
	return p, ok
}
