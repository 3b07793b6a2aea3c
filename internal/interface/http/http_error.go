package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/faq-relay/pkg/errors"
)

// HTTPError carries the status and public code for an error response.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func badRequest(message string, err error) *HTTPError {
	if message == "" {
		message = errMessage(err)
	}
	return NewHTTPError(http.StatusBadRequest, "invalid_request", message, err)
}

// fromDomainError maps AppError codes to transport statuses.
func fromDomainError(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err)
	switch code {
	case apperrors.CodeInvalidInput:
		return badRequest("", err)
	case apperrors.CodeInvalidToken:
		return NewHTTPError(http.StatusForbidden, code, errMessage(err), err)
	case apperrors.CodeLLM:
		return NewHTTPError(http.StatusBadGateway, code, errMessage(err), err)
	case apperrors.CodeNotConfigured:
		return NewHTTPError(http.StatusServiceUnavailable, code, errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, errMessage(err), err)
	}
}

// asHTTPError passes HTTPErrors through and maps anything else by its AppError code.
func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromDomainError(err, "internal_error")
}

func errMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errorBody(httpErr *HTTPError, requestID string) gin.H {
	message := httpErr.Message
	if message == "" {
		message = httpErr.Error()
	}
	body := gin.H{"code": httpErr.Code, "message": message}
	if requestID != "" {
		body["requestId"] = requestID
	}
	return gin.H{"error": body}
}
