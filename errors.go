package koala

import (
	"errors"
	"fmt"
	"time"
)

// Error types carried in ClientError.Type.
const (
	ErrorTypeConfiguration = "Configuration"
	ErrorTypeValidation    = "Validation"
	ErrorTypeNetwork       = "Network"
	ErrorTypeTimeout       = "Timeout"
	ErrorTypeRead          = "Read"
	ErrorTypeDecode        = "Decode"
)

// Sentinel errors for common failure scenarios
var (
	// ErrMissingHost is returned by New when Config.Host is empty.
	ErrMissingHost = errors.New("koala: missing host")

	// ErrMissingPort is returned by New when Config.Port is zero.
	ErrMissingPort = errors.New("koala: missing port")

	// ErrInvalidPort is returned by New when Config.Port is out of range.
	ErrInvalidPort = errors.New("koala: invalid port")

	// ErrNoResult is returned by CheckComplete when the engine answered
	// with an empty document.
	ErrNoResult = errors.New("koala: no result")
)

// ClientError describes a failed engine call or an invalid configuration.
type ClientError struct {
	Type       string
	Message    string
	Cause      error
	RequestID  string
	Method     string
	URL        string
	Endpoint   string
	StatusCode int
	Timestamp  time.Time
	Duration   time.Duration
}

// Error implements error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.Endpoint != "" {
		info += fmt.Sprintf("Endpoint: %s\n", e.Endpoint)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

// IsTransport reports whether err came from talking to the engine or
// decoding its answer, as opposed to a configuration problem. A result
// returned together with such an error has all of its fields unset.
func IsTransport(err error) bool {
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	switch clientErr.Type {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeRead, ErrorTypeDecode:
		return true
	default:
		return false
	}
}

// IsConfiguration reports whether err was raised while building a Client.
func IsConfiguration(err error) bool {
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	return clientErr.Type == ErrorTypeConfiguration || clientErr.Type == ErrorTypeValidation
}

func newConfigurationError(message string, cause error) *ClientError {
	return &ClientError{
		Type:      ErrorTypeConfiguration,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}
