package ginmw

import (
	"github.com/gin-gonic/gin"

	"github.com/reoring/jtd"
	"github.com/reoring/jtd/middleware"
)

// ValidateJSON validates the request body against v with opt (or
// DefaultValidateOpt when zero), stores the value tree in the request
// context and aborts with 400 and an issues payload on failure.
func ValidateJSON(v *jtd.Validator, opt jtd.ValidateOpt) gin.HandlerFunc {
	if opt == (jtd.ValidateOpt{}) {
		opt = middleware.DefaultValidateOpt()
	}
	return func(c *gin.Context) {
		value, err := middleware.Decode(c.Request, v, opt)
		if err != nil {
			status, payload := middleware.StatusAndPayload(err)
			c.AbortWithStatusJSON(status, payload)
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValue(c.Request.Context(), value))
		c.Next()
	}
}

// GetValue fetches the validated body from gin.Context.
func GetValue(c *gin.Context) (any, bool) {
	return middleware.ValueFromContext(c.Request.Context())
}
