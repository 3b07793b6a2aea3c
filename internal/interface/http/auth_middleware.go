package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-relay/internal/domain/auth"
	apperrors "github.com/yanqian/faq-relay/pkg/errors"
)

const authSubjectKey = "auth_subject"

// authMiddleware requires a valid bearer service token and records its subject.
func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "a bearer service token is required", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeInvalidToken) {
				abortWithError(c, fromDomainError(err, "auth_failed"))
			} else {
				abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", "token validation failed", err))
			}
			return
		}
		c.Set(authSubjectKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// subjectFromContext returns the authenticated token subject, or "" when auth is off.
func subjectFromContext(c *gin.Context) string {
	return c.GetString(authSubjectKey)
}
