package mcvrclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var ErrAPI = errors.New("mcvr api")

// ErrorResponse is the JSON the server responds with when a call fails.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Field      string `json:"field"`
}

func (e *ErrorResponse) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s (HTTP Status: %d) - %s: %s", ErrAPI, e.StatusCode, e.Kind, e.Message)
	}

	return fmt.Sprintf("%s (HTTP Status: %d) - %s", ErrAPI, e.StatusCode, e.Message)
}

func (e *ErrorResponse) Unwrap() error {
	return ErrAPI
}

// ToErrorFromResponse turns a failed response into an *ErrorResponse.
func ToErrorFromResponse(resp *resty.Response) error {
	return toError(resp.StatusCode(), resp.Status(), resp.Body())
}

func toError(statusCode int, status string, body []byte) error {
	errorResponse := &ErrorResponse{StatusCode: statusCode}
	if err := json.Unmarshal(body, errorResponse); err != nil || errorResponse.Message == "" {
		errorResponse.Message = status
	}

	return errorResponse
}

// KindOf returns the error kind the server reported, or "".
func KindOf(err error) string {
	var e *ErrorResponse
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}
