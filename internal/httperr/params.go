package httperr

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID parses a positive integer path parameter. On failure it answers
// 400 and returns false.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// QueryID parses a required positive integer query parameter. On failure it
// answers 400 and returns false.
func QueryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		BadRequest(c, name+" is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
