package middleware

import "github.com/gin-gonic/gin"

// abortWithError writes the API error envelope. Middleware cannot use the handler
// package responders without an import cycle.
func abortWithError(c *gin.Context, status int, code, message string) {
	response := gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(status, response)
}
