package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akhaled/studenthub/internal/app/models/dto"
	"github.com/akhaled/studenthub/internal/pkg/auth"
	"github.com/akhaled/studenthub/internal/pkg/flash"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// APIKeyHeader is the header carrying the API shared secret.
const APIKeyHeader = "X-API-Key"

// AuthMiddleware holds the two independent authentication gates: session
// cookies for the browser UI and a shared-secret header for the JSON API.
type AuthMiddleware struct {
	sessions *auth.SessionService
	apiKey   string
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(sessions *auth.SessionService, apiKey string) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		apiKey:   apiKey,
	}
}

// SessionAuth validates the session cookie for UI routes. Requests
// without a valid session are redirected to the login page.
func (m *AuthMiddleware) SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			flash.Set(c, "danger", "Please log in to continue.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		claims, err := m.sessions.Validate(token)
		if err != nil {
			// Expired or tampered cookie: clear it and start over.
			c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
			flash.Set(c, "danger", "Your session has expired. Please log in again.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyAuth validates the X-API-Key header for API routes. This gate is
// stateless and independent of the session manager.
func (m *AuthMiddleware) APIKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse("Invalid or missing API key"))
			return
		}
		c.Next()
	}
}
