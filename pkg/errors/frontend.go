package errors

// FrontendError represents an error formatted for frontend consumption
type FrontendError struct {
	Type      string `json:"type"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ToFrontendError converts an error to a frontend-friendly format. Only the
// user message crosses the boundary; internal causes and context stay in the
// logs so nothing about the filesystem layout leaks.
func ToFrontendError(err error) *FrontendError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &FrontendError{
			Type:      string(appErr.Type),
			Code:      appErr.Code,
			Message:   appErr.GetUserMessage(),
			Retryable: appErr.Retryable,
		}
	}

	return &FrontendError{
		Type:      string(ErrTypeApp),
		Code:      "GENERIC_ERROR",
		Message:   "An unexpected error occurred. Please try again",
		Retryable: true,
	}
}
