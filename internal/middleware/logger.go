package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the gin context key holding the request id.
const ContextKeyRequestID = "request_id"

const headerRequestID = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or assigns a new uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// Logger writes one line per request: id, method, path, status, response size, latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		id, _ := c.Get(ContextKeyRequestID)
		line := "[%v] %s %s %d %dB %s"
		if len(c.Errors) > 0 {
			line += " errors=" + c.Errors.String()
		}
		log.Printf(line, id, c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), c.Writer.Size(), time.Since(start))
	}
}

// Recovery turns a handler panic into a 500 response in the API envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		id, _ := c.Get(ContextKeyRequestID)
		log.Printf("[%v] panic recovered: %v", id, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}

// BodyLimit caps request bodies at maxBytes; reads past it fail with
// *http.MaxBytesError. A non-positive limit disables the cap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
