package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
)

// Aliases used across layers.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// View Module Error Codes
const (
	ErrCodeUnknownView  ErrorCode = "VIEW_001"
	ErrCodeUnknownTheme ErrorCode = "VIEW_002"
)

// Dataset Module Error Codes
const (
	ErrCodeUnknownDataset   ErrorCode = "DATA_001"
	ErrCodeDatasetGenerate  ErrorCode = "DATA_002"
	ErrCodeCorrelationFault ErrorCode = "DATA_003"
)

// Render Module Error Codes
const (
	ErrCodeRenderFailed      ErrorCode = "RENDER_001"
	ErrCodeViewHasNoChart    ErrorCode = "RENDER_002"
	ErrCodeUnsupportedFormat ErrorCode = "RENDER_003"
)

// Export Module Error Codes
const (
	ErrCodeExportFailed   ErrorCode = "EXP_001"
	ErrCodeSnapshotFailed ErrorCode = "EXP_002"
	ErrCodeStorageFailed  ErrorCode = "EXP_003"
)

// ErrorCodeHTTPStatus maps codes to the HTTP status written by handlers.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusServiceUnavailable,

	ErrCodeUnknownView:  http.StatusNotFound,
	ErrCodeUnknownTheme: http.StatusBadRequest,

	ErrCodeUnknownDataset:   http.StatusNotFound,
	ErrCodeDatasetGenerate:  http.StatusInternalServerError,
	ErrCodeCorrelationFault: http.StatusInternalServerError,

	ErrCodeRenderFailed:      http.StatusInternalServerError,
	ErrCodeViewHasNoChart:    http.StatusNotFound,
	ErrCodeUnsupportedFormat: http.StatusBadRequest,

	ErrCodeExportFailed:   http.StatusInternalServerError,
	ErrCodeSnapshotFailed: http.StatusInternalServerError,
	ErrCodeStorageFailed:  http.StatusBadGateway,
}

// ErrorCodeMessage holds the default message for each code.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",

	ErrCodeUnknownView:  "unknown view",
	ErrCodeUnknownTheme: "unknown theme",

	ErrCodeUnknownDataset:   "unknown dataset",
	ErrCodeDatasetGenerate:  "failed to generate dataset",
	ErrCodeCorrelationFault: "failed to compute correlation",

	ErrCodeRenderFailed:      "chart rendering failed",
	ErrCodeViewHasNoChart:    "view has no chart",
	ErrCodeUnsupportedFormat: "unsupported image format",

	ErrCodeExportFailed:   "workbook export failed",
	ErrCodeSnapshotFailed: "snapshot failed",
	ErrCodeStorageFailed:  "object storage error",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
