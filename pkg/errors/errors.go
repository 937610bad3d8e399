package errors

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"markan/pkg/logging"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Path authorization errors
	ErrTypeAccess ErrorType = "access"
	// File system errors
	ErrTypeFileSystem ErrorType = "filesystem"
	// Configuration errors
	ErrTypeConfig ErrorType = "configuration"
	// Validation errors
	ErrTypeValidation ErrorType = "validation"
	// Workspace selection errors
	ErrTypeWorkspace ErrorType = "workspace"
	// Generic application errors
	ErrTypeApp ErrorType = "application"
)

// AppError represents a structured application error
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	UserMessage string                 `json:"userMessage"`
	InternalErr error                  `json:"-"`
	Retryable   bool                   `json:"retryable"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.InternalErr != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.InternalErr)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.InternalErr
}

// Is matches AppErrors by type and code, so a predefined error still matches
// after context has been attached to a copy of it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// GetUserMessage returns a user-friendly error message
func (e *AppError) GetUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

func (e *AppError) clone() *AppError {
	c := *e
	if e.Context != nil {
		c.Context = make(map[string]interface{}, len(e.Context))
		for k, v := range e.Context {
			c.Context[k] = v
		}
	}
	return &c
}

// WithContext returns a copy of the error carrying an extra context value.
// Predefined errors are never modified.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	c := e.clone()
	if c.Context == nil {
		c.Context = make(map[string]interface{})
	}
	c.Context[key] = value
	return c
}

// WithUserMessage returns a copy with a user-friendly message
func (e *AppError) WithUserMessage(msg string) *AppError {
	c := e.clone()
	c.UserMessage = msg
	return c
}

// WithRetryable returns a copy marked as retryable or not
func (e *AppError) WithRetryable(retryable bool) *AppError {
	c := e.clone()
	c.Retryable = retryable
	return c
}

// IsRetryable checks if the error can be retried
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// Log writes the error to logger at error level.
func (e *AppError) Log(logger *logging.Logger) {
	if logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("type", string(e.Type)),
		zap.String("code", e.Code),
	}
	if e.InternalErr != nil {
		fields = append(fields, zap.Error(e.InternalErr))
	}
	for k, v := range e.Context {
		fields = append(fields, zap.Any(k, v))
	}
	logger.Error(e.Message, fields...)
}

// New creates a new AppError
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:        errType,
		Code:        code,
		Message:     message,
		InternalErr: err,
	}
}

// Predefined errors for common scenarios
var (
	// Access errors
	ErrAccessDenied = New(ErrTypeAccess, "ACCESS_DENIED", "path not permitted").
			WithUserMessage("The file could not be accessed")

	// Workspace errors
	ErrWorkspaceInvalid = New(ErrTypeWorkspace, "WORKSPACE_INVALID", "workspace path cannot be resolved").
				WithUserMessage("The selected folder could not be opened")

	ErrNoWorkspace = New(ErrTypeWorkspace, "NO_WORKSPACE", "no workspace is open").
			WithUserMessage("Open a folder first")

	// File system errors
	ErrFileWriteFailed = New(ErrTypeFileSystem, "FILE_WRITE_FAILED", "failed to write file").
				WithUserMessage("Unable to save file. Check disk space and permissions")

	// Configuration errors
	ErrConfigLoadFailed = New(ErrTypeConfig, "CONFIG_LOAD_FAILED", "failed to load configuration").
				WithUserMessage("Configuration file could not be loaded. Using defaults")

	ErrConfigSaveFailed = New(ErrTypeConfig, "CONFIG_SAVE_FAILED", "failed to save configuration").
				WithUserMessage("Unable to save settings. Check permissions")
)

// RetryHandler provides retry functionality for operations
type RetryHandler struct {
	MaxAttempts int
	Backoff     time.Duration
	OnRetry     func(attempt int, err error)
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(maxAttempts int, logger *logging.Logger) *RetryHandler {
	return &RetryHandler{
		MaxAttempts: maxAttempts,
		Backoff:     50 * time.Millisecond,
		OnRetry: func(attempt int, err error) {
			if logger != nil {
				logger.Warn("retrying operation",
					zap.Int("attempt", attempt),
					zap.Int("maxAttempts", maxAttempts),
					zap.Error(err))
			}
		},
	}
}

// Execute runs a function with retry logic
func (r *RetryHandler) Execute(fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		// Check if error is retryable
		if appErr, ok := err.(*AppError); ok && !appErr.IsRetryable() {
			return err
		}

		if attempt < r.MaxAttempts {
			if r.OnRetry != nil {
				r.OnRetry(attempt, err)
			}
			time.Sleep(r.Backoff * time.Duration(attempt))
		}
	}

	return Wrap(lastErr, ErrTypeApp, "MAX_RETRIES_EXCEEDED",
		fmt.Sprintf("operation failed after %d attempts", r.MaxAttempts)).
		WithUserMessage("Operation failed after multiple attempts. Please try again later")
}
