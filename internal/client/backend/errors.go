package backend

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/connecthub/internal/common"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// Unwrap exposes the common sentinel the response maps to, if any.
func (e *APIError) Unwrap() error {
	return e.kind
}

// errorBody covers the error shapes of GoTrue and PostgREST.
type errorBody struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (b errorBody) code() string {
	switch {
	case b.ErrorCode != "":
		return b.ErrorCode
	case b.Error != "":
		return b.Error
	}
	if s, ok := b.Code.(string); ok {
		return s
	}
	return ""
}

func (b errorBody) message() string {
	for _, m := range []string{b.Msg, b.Message, b.ErrorDescription, b.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

// parseAPIError builds an APIError from a failed response body.
func parseAPIError(status int, body []byte) *APIError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	e := &APIError{Status: status, Code: eb.code(), Message: eb.message()}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	e.kind = classify(status, e.Code)
	return e
}

func classify(status int, code string) error {
	switch code {
	case "invalid_grant", "invalid_credentials":
		return common.ErrInvalidCredentials
	case "user_already_exists", "email_exists":
		return common.ErrUserAlreadyExists
	case "weak_password":
		return common.ErrWeakPassword
	case "PGRST116":
		return common.ErrorNotFound
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	}
	if status >= 500 {
		return common.ErrUnavailable
	}
	return nil
}
