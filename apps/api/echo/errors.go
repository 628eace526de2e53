package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core"
	"github.com/edureach/backend/core/auth"
	"github.com/edureach/backend/core/content"
	"github.com/edureach/backend/core/otp"
	"github.com/edureach/backend/core/student"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")

	// domain sentinels with a fixed status; anything unlisted is a server error.
	errStatusCodes = map[error]int{
		student.ErrInvalidCredentials: http.StatusBadRequest,
		student.ErrEmailExists:        http.StatusBadRequest,
		student.ErrAlreadyVerified:    http.StatusBadRequest,
		student.ErrInvalidToken:       http.StatusBadRequest,
		student.ErrTokenExpired:       http.StatusBadRequest,
		student.ErrNotFound:           http.StatusNotFound,
		auth.ErrEmailNotVerified:      http.StatusForbidden,
		auth.ErrNoPendingLogin:        http.StatusUnauthorized,
		auth.ErrResendCooldown:        http.StatusTooManyRequests,
		otp.ErrNoChallenge:            http.StatusBadRequest,
		otp.ErrExpired:                http.StatusBadRequest,
		otp.ErrInvalidCode:            http.StatusBadRequest,
		content.ErrCourseNotFound:     http.StatusNotFound,
		content.ErrAssignmentNotFound: http.StatusNotFound,
		content.ErrProgressNotFound:   http.StatusNotFound,
		content.ErrInvalidVideoIndex:  http.StatusBadRequest,
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case auth.RoleMismatchError:
			code = http.StatusForbidden
			message = origErr.Error()
		default:
			if c, ok := errStatusCodes[cause]; ok {
				code = c
				message = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var st student.Student
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				st.Name = claims.Name
				st.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), st)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
