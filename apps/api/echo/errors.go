package echoapi

import (
	"net/http"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/attendance"
	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/demand"
	"github.com/fitsenior/backend/core/enrollment"
	"github.com/fitsenior/backend/core/forum"
	"github.com/fitsenior/backend/core/message"
	"github.com/fitsenior/backend/core/payment"
	"github.com/fitsenior/backend/core/professional"
	"github.com/fitsenior/backend/core/profile"
	"github.com/fitsenior/backend/core/session"
	"github.com/fitsenior/backend/core/student"
	"github.com/fitsenior/backend/core/upload"
	"github.com/fitsenior/backend/core/user"
)

var (
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
	errInvalidDate        = echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	errInvalidYear        = echo.NewHTTPError(http.StatusBadRequest, "invalid year")
)

// domainErrors maps the sentinel errors of core packages to HTTP status codes; the message is the error text.
var domainErrors = map[error]int{
	user.ErrNotFound:           http.StatusNotFound,
	user.ErrInvalidCredentials: http.StatusBadRequest,
	user.ErrAccountDeactivated: http.StatusForbidden,

	profile.ErrNotFound:      http.StatusNotFound,
	session.ErrRoleAssigned:  http.StatusBadRequest,
	student.ErrNotFound:      http.StatusNotFound,
	student.ErrExists:        http.StatusBadRequest,
	professional.ErrNotFound: http.StatusNotFound,
	professional.ErrExists:   http.StatusBadRequest,

	class.ErrNotFound:             http.StatusNotFound,
	class.ErrForbidden:            http.StatusForbidden,
	class.ErrProfessionalNotFound: http.StatusNotFound,

	enrollment.ErrNotFound:        http.StatusNotFound,
	enrollment.ErrForbidden:       http.StatusForbidden,
	enrollment.ErrClassIDRequired: http.StatusBadRequest,
	enrollment.ErrAlreadyEnrolled: http.StatusBadRequest,
	enrollment.ErrClassFull:       http.StatusBadRequest,

	attendance.ErrForbidden:         http.StatusForbidden,
	attendance.ErrForeignEnrollment: http.StatusBadRequest,

	demand.ErrNotFound:     http.StatusNotFound,
	demand.ErrNotFoundOwns: http.StatusNotFound,

	forum.ErrPostNotFound: http.StatusNotFound,
	forum.ErrForbidden:    http.StatusForbidden,

	message.ErrNotFound:          http.StatusNotFound,
	message.ErrRecipientNotFound: http.StatusNotFound,
	message.ErrMissingFields:     http.StatusBadRequest,
	message.ErrSelfMessage:       http.StatusBadRequest,

	payment.ErrForbidden: http.StatusForbidden,

	upload.ErrInvalidKind:        http.StatusBadRequest,
	upload.ErrInvalidContentType: http.StatusBadRequest,
	upload.ErrStudentsOnly:       http.StatusForbidden,
}

// domainStatus looks err up in domainErrors. Only comparable errors can be map keys.
func domainStatus(err error) (int, bool) {
	if err == nil || !reflect.TypeOf(err).Comparable() {
		return 0, false
	}
	status, ok := domainErrors[err]
	return status, ok
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors: // a slice, never a map key
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
		default:
			if status, ok := domainStatus(origErr); ok {
				code = status
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) && signalShutdown != nil {
				signalShutdown()
			}
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
