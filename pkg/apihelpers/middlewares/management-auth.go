package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	jwthandling "github.com/case-framework/survey-editor-backend/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
)

const (
	HeaderAuthorization = "Authorization"

	ContextKeyValidatedToken = "validatedToken"
)

// GetAndValidateManagementUserJWT validates the bearer token and stores its claims in the context.
func GetAndValidateManagementUserJWT(tokenSignKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			slog.Warn("no Authorization token found", slog.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		parsedToken, err := jwthandling.ValidateManagementUserToken(token, tokenSignKey)
		if err != nil {
			slog.Warn("token validation failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "error during token validation"})
			return
		}
		c.Set(ContextKeyValidatedToken, parsedToken)
	}
}

func IsInstanceIDInJWTAllowed(allowedInstanceIDs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ValidatedClaims(c)
		if !ok {
			slog.Warn("validatedToken not found in context")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validatedToken not found in context"})
			return
		}

		if !slices.Contains(allowedInstanceIDs, claims.InstanceID) {
			slog.Warn("instanceID not allowed", slog.String("instanceID", claims.InstanceID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "instanceID not allowed"})
			return
		}
	}
}

// RequireSurveyEditor blocks users without permission to edit surveys.
func RequireSurveyEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ValidatedClaims(c)
		if !ok || !claims.CanEditSurveys() {
			slog.Warn("survey editor permission missing", slog.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no permission to edit surveys"})
			return
		}
	}
}

// ValidatedClaims returns the claims stored by GetAndValidateManagementUserJWT.
func ValidatedClaims(c *gin.Context) (*jwthandling.ManagementUserClaims, bool) {
	v, ok := c.Get(ContextKeyValidatedToken)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwthandling.ManagementUserClaims)
	return claims, ok && claims != nil
}

func extractToken(c *gin.Context) (string, error) {
	header := c.GetHeader(HeaderAuthorization)
	if header == "" {
		return "", errors.New("no Authorization header found")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if len(token) == 0 {
		return "", errors.New("no token found in Authorization header")
	}
	return token, nil
}
