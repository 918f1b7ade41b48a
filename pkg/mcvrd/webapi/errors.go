package webapi

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi/apimiddleware"
	"github.com/materials-commons/mcvr/pkg/vr"
)

// ErrorResponse is the payload every failed request gets.
type ErrorResponse struct {
	Type    string `json:"type"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// HTTPErrorHandler renders errors as ErrorResponse. Access failures for
// anonymous callers become 401 so clients know to log in.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		log.Warnf("Error after response was committed for %s: %s", c.Request().URL.Path, err)
		return
	}

	status, resp := errorResponse(err)
	if status == http.StatusForbidden && apimiddleware.CurrentUser(c) == nil {
		status = http.StatusUnauthorized
	}

	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{"path": c.Request().URL.Path, "method": c.Request().Method}).Errorf("%s", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, resp)
	}

	if writeErr != nil {
		log.Errorf("Unable to write error response: %s", writeErr)
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	var (
		vrErr   *vr.Error
		httpErr *echo.HTTPError
	)

	switch {
	case errors.As(err, &vrErr):
		message := vrErr.Message
		if vrErr.Kind == vr.KindInternal {
			message = "An unexpected error occurred on the server."
		}
		return vrErr.HTTPStatus(), ErrorResponse{
			Type:    vrErr.Type(),
			Kind:    vrErr.Kind.String(),
			Message: message,
			Field:   vrErr.Field,
		}

	case errors.As(err, &httpErr):
		resp := ErrorResponse{Type: "rest", Message: http.StatusText(httpErr.Code)}
		if msg, ok := httpErr.Message.(string); ok {
			resp.Message = msg
		}
		if httpErr.Code == http.StatusUnauthorized || httpErr.Code == http.StatusForbidden {
			resp.Type = "access"
		}
		return httpErr.Code, resp

	default:
		return http.StatusInternalServerError, ErrorResponse{
			Type:    "exception",
			Message: "An unexpected error occurred on the server.",
		}
	}
}
