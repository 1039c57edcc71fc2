package errors

import (
	"context"
	"errors"
)

// Error codes shared by the domain services and the HTTP transport.
const (
	CodeInvalidInput    = "invalid_input"
	CodeConfig          = "config_error"
	CodeEmbedding       = "embedding_error"
	CodeVectorSearch    = "vector_search_error"
	CodeDataShape       = "data_shape_error"
	CodeForecast        = "forecast_error"
	CodeLLM             = "llm_error"
	CodeUpstreamTimeout = "upstream_timeout"
	CodeCatalog         = "catalog_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// WrapUpstream wraps a failed outbound call, reporting an expired deadline as
// CodeUpstreamTimeout instead of the caller supplied code.
func WrapUpstream(code, message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		code = CodeUpstreamTimeout
	}
	return Wrap(code, message, err)
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost AppError in the chain.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
