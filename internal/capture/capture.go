// Package capture models network exchanges recorded by a browser or proxy
// and loads them from disk for spec generation.
package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ErrorCode categorizes capture loading errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError ErrorCode = "InputError"
	ParseError ErrorCode = "ParseError"
)

// CaptureError is a structured error with the offending input location attached.
type CaptureError struct {
	Code     ErrorCode
	Message  string
	Location string // file path
	Cause    error
}

func (e *CaptureError) Error() string { return e.Message }
func (e *CaptureError) Unwrap() error { return e.Cause }

// Exchange is one observed request/response pair. Fields mirror the record
// layout produced by DevTools-style capture exports; everything except URL is
// optional.
type Exchange struct {
	URL            string            `json:"url"`
	Method         string            `json:"method,omitempty"`
	RequestHeaders map[string]string `json:"requestHeaders,omitempty"`
	PostData       string            `json:"postData,omitempty"`
	Response       *Response         `json:"response,omitempty"`
}

// Response carries the observed response half of an exchange. A zero Status
// is treated as 200 downstream.
type Response struct {
	Status  int               `json:"status,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// Header returns the first header whose name matches case-insensitively.
// Capture exports disagree on header-name casing, so lookups never assume one.
func Header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Load reads a JSON array of capture records from path. The top level must be
// a list; anything else fails fast so no partial spec is ever produced from a
// malformed capture.
func Load(path string) ([]Exchange, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &CaptureError{Code: InputError, Message: "capture: input path is empty"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CaptureError{
			Code:     InputError,
			Message:  fmt.Sprintf("capture: read %s: %v", path, err),
			Location: path,
			Cause:    err,
		}
	}

	return Decode(data, path)
}

// Decode parses raw capture bytes. location is only used in error messages.
func Decode(data []byte, location string) ([]Exchange, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &CaptureError{
			Code:     ParseError,
			Message:  fmt.Sprintf("capture: invalid JSON in %s: %v", location, err),
			Location: location,
			Cause:    err,
		}
	}
	if _, ok := probe.([]any); !ok {
		return nil, &CaptureError{
			Code:     ParseError,
			Message:  fmt.Sprintf("capture: %s must contain a JSON array of capture records", location),
			Location: location,
		}
	}

	var exchanges []Exchange
	if err := json.Unmarshal(data, &exchanges); err != nil {
		return nil, &CaptureError{
			Code:     ParseError,
			Message:  fmt.Sprintf("capture: malformed capture record in %s: %v", location, err),
			Location: location,
			Cause:    err,
		}
	}
	return exchanges, nil
}
