package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// tolerant to the value type stored by the middleware (int / int64 / float64 / string)
func getInt64FromCtx(c *gin.Context, key string) (int64, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserID(c *gin.Context) int64 {
	id, _ := getInt64FromCtx(c, "user_id")
	return id
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
