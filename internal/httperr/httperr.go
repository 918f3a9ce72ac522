package httperr

import (
	"errors"
	"net/http"
	"strings"

	"foodsync/internal/core"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Respond maps a service error to a status code and a {"message"} body.
// Unknown errors become 500 and are attached to the gin context so the
// access log records them.
func Respond(c *gin.Context, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"message": "validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, core.ErrValidation):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	case errors.Is(err, core.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, core.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, core.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

// BindFailed answers a failed ShouldBind call: 422 with per-field messages
// when struct validation failed, 400 when the body could not be decoded.
func BindFailed(c *gin.Context, err error) {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		fields := make(map[string]string, len(ves))
		for _, fe := range ves {
			fields[lowerFirst(fe.Field())] = describe(fe)
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"message": "validation failed",
			"errors":  fields,
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
}

// BadRequest answers 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": message})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
