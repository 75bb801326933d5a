// Package errors provides the structured error taxonomy used across glyph.
//
// Every error raised by the icon pipeline is a *GlyphError carrying a Type
// (validation, security, network, ...) and a stable Code. Two GlyphErrors
// match under errors.Is when their Type and Code are equal, so callers can
// test for a category without caring about the message:
//
//	if errors.Is(err, glypherrors.ErrIconNotFound("")) { ... }
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// GlyphError is a structured error type with context.
type GlyphError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Icon        string
	Recoverable bool
}

// Error implements the error interface.
func (e *GlyphError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Icon != "" {
		parts = append(parts, "icon:"+e.Icon)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *GlyphError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *GlyphError) Is(target error) bool {
	var t *GlyphError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *GlyphError) WithContext(key string, value interface{}) *GlyphError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithIcon adds icon context.
func (e *GlyphError) WithIcon(icon string) *GlyphError {
	e.Icon = icon

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *GlyphError {
	return &GlyphError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *GlyphError {
	return &GlyphError{
		Type:        ErrorTypeSecurity,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *GlyphError {
	return &GlyphError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewRenderError creates a render error.
func NewRenderError(code, message string, cause error) *GlyphError {
	return &GlyphError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *GlyphError {
	return &GlyphError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *GlyphError {
	return &GlyphError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *GlyphError {
	return &GlyphError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// Error recovery and handling utilities

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ge *GlyphError
	if errors.As(err, &ge) {
		return ge.Recoverable
	}

	return false
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	var ge *GlyphError
	if errors.As(err, &ge) {
		return ge.Type == ErrorTypeSecurity
	}

	return false
}

// IsCode reports whether err, or any error it wraps, is a GlyphError with
// the given code.
func IsCode(err error, code string) bool {
	var ge *GlyphError
	for err != nil {
		if errors.As(err, &ge) {
			if ge.Code == code {
				return true
			}
			err = ge.Cause
			continue
		}
		return false
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error at a level matching its category. Recoverable
// categories (validation, not found, network) are warnings.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var ge *GlyphError
	if !errors.As(err, &ge) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch ge.Type {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeNetwork:
		h.logger.Warn(ctx, ge, "Icon request failed",
			"type", ge.Type,
			"code", ge.Code,
			"icon", ge.Icon)
	case ErrorTypeSecurity:
		h.logger.Error(ctx, ge, "Security error occurred",
			"type", ge.Type,
			"code", ge.Code,
			"icon", ge.Icon)
	default:
		h.logger.Error(ctx, ge, "Error occurred",
			"type", ge.Type,
			"code", ge.Code,
			"icon", ge.Icon)
	}
}

// Common error codes.
const (
	ErrCodeIconNotFound          = "ERR_ICON_NOT_FOUND"
	ErrCodeNameSpaceMissing      = "ERR_NAMESPACE_MISSING"
	ErrCodeInvalidIdentifier     = "ERR_INVALID_IDENTIFIER"
	ErrCodeUnsafeURL             = "ERR_UNSAFE_URL"
	ErrCodeNetworkAdapterMissing = "ERR_NETWORK_ADAPTER_MISSING"
	ErrCodeSourceMalformed       = "ERR_SOURCE_MALFORMED"
	ErrCodeFetchFailed           = "ERR_FETCH_FAILED"
	ErrCodeConfigInvalid         = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound          = "ERR_FILE_NOT_FOUND"
	ErrCodeInternalError         = "ERR_INTERNAL"
	ErrCodeValidationFailed      = "ERR_VALIDATION_FAILED"
)

// ValidationError interface for field-specific validation errors.
type ValidationError interface {
	error
	Field() string
	Value() interface{}
	Suggestions() []string
}

// FieldValidationError implements ValidationError for specific field errors.
type FieldValidationError struct {
	FieldName    string
	FieldValue   interface{}
	ErrorMessage string
	HelpText     []string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", fve.FieldName, fve.ErrorMessage)
}

// Field returns the field name that failed validation.
func (fve *FieldValidationError) Field() string {
	return fve.FieldName
}

// Value returns the invalid value.
func (fve *FieldValidationError) Value() interface{} {
	return fve.FieldValue
}

// Suggestions returns helpful suggestions for fixing the error.
func (fve *FieldValidationError) Suggestions() []string {
	return fve.HelpText
}

// NewFieldValidationError creates a new field validation error.
func NewFieldValidationError(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) *FieldValidationError {
	return &FieldValidationError{
		FieldName:    field,
		FieldValue:   value,
		ErrorMessage: message,
		HelpText:     suggestions,
	}
}

// ValidationErrorCollection represents a collection of validation errors.
type ValidationErrorCollection struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (vec *ValidationErrorCollection) Error() string {
	if len(vec.Errors) == 0 {
		return "no validation errors"
	}
	if len(vec.Errors) == 1 {
		return vec.Errors[0].Error()
	}

	messages := make([]string, 0, len(vec.Errors))
	for _, err := range vec.Errors {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("%d validation errors: %s", len(vec.Errors), strings.Join(messages, "; "))
}

// Add adds a validation error to the collection.
func (vec *ValidationErrorCollection) Add(err ValidationError) {
	vec.Errors = append(vec.Errors, err)
}

// AddField adds a field validation error to the collection.
func (vec *ValidationErrorCollection) AddField(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) {
	vec.Add(NewFieldValidationError(field, value, message, suggestions...))
}

// HasErrors returns true if there are any validation errors.
func (vec *ValidationErrorCollection) HasErrors() bool {
	return len(vec.Errors) > 0
}

// ToGlyphError converts the validation collection to a GlyphError with the
// collection as its cause.
func (vec *ValidationErrorCollection) ToGlyphError(message string) *GlyphError {
	if !vec.HasErrors() {
		return nil
	}

	context := make(map[string]interface{})
	for _, err := range vec.Errors {
		context[err.Field()] = map[string]interface{}{
			"value":       err.Value(),
			"suggestions": err.Suggestions(),
		}
	}

	return &GlyphError{
		Type:        ErrorTypeConfig,
		Code:        ErrCodeConfigInvalid,
		Message:     message,
		Cause:       vec,
		Context:     context,
		Recoverable: false,
	}
}

// Helper functions for the icon pipeline

// ErrIconNotFound reports that no definition could be resolved for ref.
func ErrIconNotFound(ref string) *GlyphError {
	return (&GlyphError{
		Type:        ErrorTypeNotFound,
		Code:        ErrCodeIconNotFound,
		Message:     "the icon " + ref + " is not found",
		Recoverable: true,
	}).WithIcon(ref)
}

// ErrNameSpaceMissing reports a literal identifier without a type.
func ErrNameSpaceMissing(identifier string) *GlyphError {
	return NewValidationError(
		ErrCodeNameSpaceMissing,
		"type should be specified when adding a literal icon, e.g. name:type",
	).WithIcon(identifier)
}

// ErrInvalidIdentifier reports an identifier with more than one namespace
// separator.
func ErrInvalidIdentifier(identifier string) *GlyphError {
	return NewValidationError(
		ErrCodeInvalidIdentifier,
		"the icon identifier "+identifier+" is not valid",
	).WithIcon(identifier)
}

// ErrUnsafeURL reports an asset locator rejected by the URL safety policy.
func ErrUnsafeURL(locator string, cause error) *GlyphError {
	return &GlyphError{
		Type:        ErrorTypeSecurity,
		Code:        ErrCodeUnsafeURL,
		Message:     "the url " + locator + " is not safe",
		Cause:       cause,
		Recoverable: false,
	}
}

// ErrNetworkAdapterMissing reports that dynamic loading was attempted
// without a configured fetcher.
func ErrNetworkAdapterMissing() *GlyphError {
	return NewConfigError(
		ErrCodeNetworkAdapterMissing,
		"no fetcher is configured, icons cannot be loaded dynamically",
	)
}

// ErrSourceMalformed reports markup without an identifiable root element.
func ErrSourceMalformed(icon string, cause error) *GlyphError {
	return NewRenderError(
		ErrCodeSourceMalformed,
		"the markup has no svg root element",
		cause,
	).WithIcon(icon)
}

// ErrFetchFailed wraps a fetcher failure for logging.
func ErrFetchFailed(locator string, cause error) *GlyphError {
	return NewNetworkError(
		ErrCodeFetchFailed,
		"failed to fetch "+locator,
		cause,
	)
}
