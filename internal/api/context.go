package api

import "github.com/gin-gonic/gin"

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

func companyIDFromContext(c *gin.Context) (uint, bool) {
	value, ok := c.Get("companyID")
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
