package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akhaled/studenthub/internal/app/models/dto"
)

// MaxBodySize caps request bodies at maxBytes. A request declaring a larger
// body is rejected with 413 before any parsing; bodies without a declared
// length are capped by the reader and fail inside the handler's parse.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("Request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
