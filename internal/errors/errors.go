package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ScanIOError indicates the repository root could not be read
	ScanIOError ErrorCode = "SCAN_IO_ERROR"
	// FileSkipped indicates a single file was left out of the snapshot
	FileSkipped ErrorCode = "FILE_SKIPPED"
	// ParseFailure indicates an embedded structured block could not be parsed
	ParseFailure ErrorCode = "PARSE_FAILURE"
	// EmptyCorpus indicates the snapshot holds no files
	EmptyCorpus ErrorCode = "EMPTY_CORPUS"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// CacheFailure indicates the analysis cache could not be read or written
	CacheFailure ErrorCode = "CACHE_FAILURE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests changing a configuration key
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Key         string        `json:"key,omitempty"`
	Description string        `json:"description,omitempty"`
}

// RepoError carries a stable code, the path it concerns and an optional cause.
type RepoError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Path           string      `json:"path,omitempty"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates a RepoError with the default fixes for its code.
func New(code ErrorCode, message string, cause error) *RepoError {
	return &RepoError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// Error implements the error interface
func (e *RepoError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = msg + " (" + e.Path + ")"
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying error
func (e *RepoError) Unwrap() error {
	return e.cause
}

// WithPath records the file or directory the error concerns.
func (e *RepoError) WithPath(path string) *RepoError {
	e.Path = path
	return e
}

// WithDetails adds details to the error
func (e *RepoError) WithDetails(details interface{}) *RepoError {
	e.Details = details
	return e
}

// Is matches another RepoError with the same code.
func (e *RepoError) Is(target error) bool {
	t, ok := target.(*RepoError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// HasCode reports whether any error in err's chain is a RepoError with code.
func HasCode(err error, code ErrorCode) bool {
	var re *RepoError
	for err != nil {
		if !stderrors.As(err, &re) {
			return false
		}
		if re.Code == code {
			return true
		}
		err = re.cause
	}
	return false
}

// CodeOf returns the code of the first RepoError in err's chain, or InternalError.
func CodeOf(err error) ErrorCode {
	var re *RepoError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ScanIOError: {
		{
			Type:        RunCommand,
			Command:     "ls -la ${path}",
			Description: "Check that the repository root exists and is readable",
		},
	},
	EmptyCorpus: {
		{
			Type:        EditConfig,
			Key:         "scan.include",
			Description: "Widen the include patterns or remove excludes",
		},
	},
	ConfigInvalid: {
		{
			Type:        EditConfig,
			Key:         ".repolens/config.json",
			Description: "Fix the reported field",
		},
	},
	CacheFailure: {
		{
			Type:        RunCommand,
			Command:     "rm -f .repolens/cache.db",
			Description: "Remove the analysis cache; it is rebuilt on the next run",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
