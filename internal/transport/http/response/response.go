// Package response holds the wire-level JSON helpers. Error bodies are always
// the flat {"error": "..."} shape the browser client expects.
package response

import "github.com/gin-gonic/gin"

const (
	MsgUnauthorized      = "Unauthorized"
	MsgRateLimitExceeded = "Rate limit exceeded."
	MsgInvalidRoomID     = "Invalid room id"
	MsgEmptyContent      = "Content must not be empty"
	MsgInternal          = "Internal server error"
)

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}

// AbortError ends middleware chains with an error body.
func AbortError(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{"error": message})
}
