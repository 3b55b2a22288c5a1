package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/storefront/internal/topic"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (remote rejected a call, scenarios failed, etc.)
	ExitCommandError = 2 // Command error (bad arguments, invalid configuration, etc.)
)

// Error codes reported in CLIError.Code.
const (
	CodeFetchFailed     = "E_FETCH"
	CodeSaveFailed      = "E_SAVE"
	CodeDeleteFailed    = "E_DELETE"
	CodeProductNotFound = "E_PRODUCT_NOT_FOUND"
	CodeCheckoutFailed  = "E_CHECKOUT"
	CodeTestFailed      = "E_TEST_FAILED"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string      `json:"status"`            // "ok" or "error"
	Data    interface{} `json:"data,omitempty"`    // success payload
	Error   *CLIError   `json:"error,omitempty"`   // error details
	TraceID string      `json:"trace_id,omitempty"` // optional trace correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E_FETCH", "E_SAVE", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// topicErrorCode maps a topic client error to its CLIError code.
func topicErrorCode(err error) string {
	switch {
	case topic.IsFetchError(err):
		return CodeFetchFailed
	case topic.IsSaveError(err):
		return CodeSaveFailed
	case topic.IsDeleteError(err):
		return CodeDeleteFailed
	default:
		return "E_UNKNOWN"
	}
}

// reportTopicError prints err in the configured format and returns the
// ExitError for the command. The printed message is the displayable one.
func (f *OutputFormatter) reportTopicError(err error) error {
	var details interface{}
	if status := topicStatus(err); status != 0 {
		details = map[string]int{"status": status}
	}
	if outErr := f.Error(topicErrorCode(err), err.Error(), details); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, "topic operation failed", err)
}

// topicStatus returns the HTTP status carried by a topic error, or 0.
func topicStatus(err error) int {
	var (
		fe *topic.FetchError
		se *topic.SaveError
		de *topic.DeleteError
	)
	switch {
	case errors.As(err, &fe):
		return fe.StatusCode
	case errors.As(err, &se):
		return se.StatusCode
	case errors.As(err, &de):
		return de.StatusCode
	}
	return 0
}
