package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Wrap wraps an error with additional context, creating a GlyphError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *GlyphError {
	if err == nil {
		return nil
	}

	// Keep context and icon of an existing GlyphError
	var ge *GlyphError
	if errors.As(err, &ge) {
		return &GlyphError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       ge,
			Context:     ge.Context,
			Icon:        ge.Icon,
			Recoverable: ge.Recoverable,
		}
	}

	return &GlyphError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeNetwork,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *GlyphError {
	ge := Wrap(err, ErrorTypeIO, code, message)
	if ge != nil {
		ge.Recoverable = false
	}
	return ge
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *GlyphError {
	ge := Wrap(err, ErrorTypeConfig, code, message)
	if ge != nil {
		ge.Recoverable = false
	}
	return ge
}

// FormatErrorWithSuggestions formats an error with suggestions for ValidationError types
func FormatErrorWithSuggestions(err error) string {
	if err == nil {
		return ""
	}

	var vec *ValidationErrorCollection
	if errors.As(err, &vec) && vec.HasErrors() {
		result := vec.Error()
		for _, ve := range vec.Errors {
			result += "\n  • " + ve.Error()
			for _, suggestion := range ve.Suggestions() {
				result += fmt.Sprintf("\n      %s", suggestion)
			}
		}
		return result
	}

	var ve ValidationError
	if errors.As(err, &ve) {
		result := ve.Error()
		suggestions := ve.Suggestions()
		if len(suggestions) > 0 {
			result += "\n\nSuggestions:"
			for _, suggestion := range suggestions {
				result += fmt.Sprintf("\n  • %s", suggestion)
			}
		}
		return result
	}

	return err.Error()
}

// GetErrorContext extracts context information from a GlyphError
func GetErrorContext(err error) map[string]interface{} {
	var ge *GlyphError
	if errors.As(err, &ge) {
		context := make(map[string]interface{})
		for k, v := range ge.Context {
			context[k] = v
		}
		if ge.Icon != "" {
			context["icon"] = ge.Icon
		}
		context["type"] = string(ge.Type)
		context["code"] = ge.Code
		context["recoverable"] = ge.Recoverable
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}

// HTTPStatus maps an error to the status code the icon server answers with.
func HTTPStatus(err error) int {
	var ge *GlyphError
	if !errors.As(err, &ge) {
		return http.StatusInternalServerError
	}

	switch ge.Type {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeSecurity:
		return http.StatusForbidden
	case ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
