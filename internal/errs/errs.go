// Package errs defines the error codes shared across examwatch.
package errs

// ErrorCode identifies the class of a failure.
type ErrorCode string

const (
	// ConfigError is a missing or invalid setting. Fatal.
	ConfigError ErrorCode = "ConfigError"

	// FetchError is an upstream exam finder failure. Fatal for the run.
	FetchError ErrorCode = "FetchError"

	// NotifyError is an email API failure. Fatal; state is not advanced.
	NotifyError ErrorCode = "NotifyError"

	// StateLoadError is never returned to callers, only logged.
	StateLoadError ErrorCode = "StateLoadError"

	// StateSaveError is a failure persisting the next snapshot. Fatal.
	StateSaveError ErrorCode = "StateSaveError"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
