// internal/middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/laihecha/tea-api/internal/i18n"
	"github.com/laihecha/tea-api/internal/services"
	"github.com/laihecha/tea-api/internal/utils"
)

// Authenticator checks an admin bearer token and returns its subject.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

func AdminRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		subject, err := auth.Authenticate(token)
		if err != nil {
			key := i18n.KeyAuthInvalidToken
			if errors.Is(err, services.ErrInvalidSubject) {
				key = i18n.KeyAuthInvalidSubject
			}
			utils.UnauthorizedResponse(c, i18n.T(lang, key))
			return
		}

		c.Set("admin", subject)
		c.Next()
	}
}
