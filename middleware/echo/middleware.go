package echomw

import (
	"github.com/labstack/echo/v4"

	"github.com/reoring/jtd"
	"github.com/reoring/jtd/middleware"
)

// ValidateJSON validates the request body against v, stores the value tree
// in the request context on success, or returns 400 with Issues.
func ValidateJSON(v *jtd.Validator, opt jtd.ValidateOpt) echo.MiddlewareFunc {
	if opt == (jtd.ValidateOpt{}) {
		opt = middleware.DefaultValidateOpt()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value, err := middleware.Decode(c.Request(), v, opt)
			if err != nil {
				status, payload := middleware.StatusAndPayload(err)
				return c.JSON(status, payload)
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithValue(c.Request().Context(), value)))
			return next(c)
		}
	}
}

// GetValue fetches the validated body from echo.Context.
func GetValue(c echo.Context) (any, bool) {
	return middleware.ValueFromContext(c.Request().Context())
}
