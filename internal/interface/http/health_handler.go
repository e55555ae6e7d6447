package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCounter reports open chat sessions.
type SessionCounter interface {
	Count() int
}

// Health GET /healthz
func Health(sessions SessionCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		n := 0
		if sessions != nil {
			n = sessions.Count()
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "chat_sessions": n})
	}
}
