package log

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/motemen/go-loghttp"
)

// Logger is the global logger instance
var Logger *slog.Logger

// debugHTTP reports whether HTTP request/response tracing is on
var debugHTTP bool

// InitLogger initializes the global logger writing to w.
// Debug level (and HTTP tracing) is enabled when debug is true.
func InitLogger(w io.Writer, debug bool) {
	opts := &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelInfo,
	}
	if debug {
		opts.Level = slog.LevelDebug
	}
	debugHTTP = debug

	Logger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(Logger)
}

func init() {
	InitLogger(os.Stderr, os.Getenv("EXAMWATCH_DEBUG") != "")
}

// Transport wraps base so that every request and response is logged at debug level.
// When debugging is off base is returned unchanged.
func Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if !debugHTTP {
		return base
	}
	return &loghttp.Transport{
		Transport: base,
		// Headers are not logged: the email request carries the API key.
		LogRequest: func(req *http.Request) {
			Debug("HTTP request",
				"method", req.Method,
				"url", req.URL.String(),
			)
		},
		LogResponse: func(resp *http.Response) {
			Debug("HTTP response",
				"method", resp.Request.Method,
				"url", resp.Request.URL.String(),
				"status_code", resp.StatusCode,
			)
		},
	}
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
