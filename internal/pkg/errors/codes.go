package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer   = 1000
	ErrInvalidParams    = 1001
	ErrNotFound         = 1002
	ErrUnauthorized     = 1003
	ErrForbidden        = 1004
	ErrConflict         = 1005
	ErrBadRequest       = 1007
	ErrServiceUnavail   = 1008
	ErrPermissionDenied = 1009

	// Session errors (2000-2999)
	ErrSessionInvalidToken = 2000
	ErrSessionBootFailed   = 2001
	ErrSessionDevModeOnly  = 2002

	// AI integration errors (6000-6999)
	ErrAIConfigurationMissing = 6000
	ErrAIAuthenticationFailed = 6001
	ErrAIAuthorizationFailed  = 6002
	ErrAIResourceNotFound     = 6003
	ErrAIConnectionFailed     = 6004
	ErrAIInvalidProvider      = 6005
	ErrAITemplateInvalid      = 6006
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:   {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:    {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:         {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:     {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:        {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:         {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrBadRequest:       {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:   {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},
	ErrPermissionDenied: {ErrPermissionDenied, http.StatusForbidden, "Insufficient permission"},

	// Session errors
	ErrSessionInvalidToken: {ErrSessionInvalidToken, http.StatusUnauthorized, "Invalid or expired session"},
	ErrSessionBootFailed:   {ErrSessionBootFailed, http.StatusInternalServerError, "Session boot failed"},
	ErrSessionDevModeOnly:  {ErrSessionDevModeOnly, http.StatusForbidden, "This method is only meant for developer mode"},

	// AI integration errors
	ErrAIConfigurationMissing: {ErrAIConfigurationMissing, http.StatusBadRequest, "AI configuration missing"},
	ErrAIAuthenticationFailed: {ErrAIAuthenticationFailed, http.StatusBadGateway, "AI provider authentication failed"},
	ErrAIAuthorizationFailed:  {ErrAIAuthorizationFailed, http.StatusBadGateway, "AI provider access forbidden"},
	ErrAIResourceNotFound:     {ErrAIResourceNotFound, http.StatusBadGateway, "AI provider resource not found"},
	ErrAIConnectionFailed:     {ErrAIConnectionFailed, http.StatusBadGateway, "AI provider connection failed"},
	ErrAIInvalidProvider:      {ErrAIInvalidProvider, http.StatusBadRequest, "Unsupported AI provider"},
	ErrAITemplateInvalid:      {ErrAITemplateInvalid, http.StatusBadRequest, "Invalid instruction template"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
