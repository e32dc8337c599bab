package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/salon-api/pkg/httputil"
)

// DefaultMaxBodySize fits the largest appointment document comfortably.
const DefaultMaxBodySize int64 = 1 << 20

// SizeLimit rejects bodies declared larger than maxBytes and caps the reader
// for bodies that lie about their length.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", maxBytes),
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
