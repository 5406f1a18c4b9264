// internal/pkg/response/response.go
package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Timestamp formats t the way every response body carries it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// JSON writes payload as-is. The webhook contract uses flat bodies rather
// than an envelope, so handlers build the map themselves.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error sends {"error": message} and aborts the chain.
func Error(c *gin.Context, code int, message string) {
	c.Abort()
	c.JSON(code, gin.H{"error": message})
}

// ServerError sends a 500 carrying the failure description and a timestamp.
func ServerError(c *gin.Context, message string) {
	c.Abort()
	c.JSON(500, gin.H{
		"error":     message,
		"timestamp": Timestamp(time.Now()),
	})
}

// BadRequest echoes what was received alongside a hint about the expected shape.
func BadRequest(c *gin.Context, message string, received interface{}, help string) {
	c.Abort()
	c.JSON(400, gin.H{
		"error":    message,
		"received": received,
		"help":     help,
	})
}
