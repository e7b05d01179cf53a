package requestid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	headerName = "X-Request-ID"
	ctxKey     = "request_id"
)

// Middleware tags every request with an identifier so log lines from one
// request can be correlated. A client-supplied X-Request-ID is reused; the
// identifier is echoed back on the response either way.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerName)
		if id == "" {
			id = newID()
		}

		c.Set(ctxKey, id)
		c.Writer.Header().Set(headerName, id)

		c.Next()
	}
}

// Value reads the request identifier back out of the Gin context. Empty when
// the middleware did not run.
func Value(c *gin.Context) string {
	v, ok := c.Get(ctxKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

func newID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// rand failing is close to impossible; a timestamp keeps logs usable.
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
