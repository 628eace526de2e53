package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core"
)

// authMiddleware validates the bearer JWT and refuses the transient
// pending-login tokens, which are only good for the OTP endpoints.
func authMiddleware(conf *core.Config) echo.MiddlewareFunc {
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	guard := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Purpose != "" {
				return errUnauthorized
			}
			return next(ctx)
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwt(guard(next))
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
