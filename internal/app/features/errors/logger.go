// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorLogger logs a failure with request context and then shows the user a
// friendly error page. HTMX callers get a plain-text body instead, so the
// message can be swapped into the page without a full layout.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// LogServerError logs err at error level and responds 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log(zap.ErrorLevel, r, msg, err)
	e.respond(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

// LogBadRequest logs err at warn level and responds 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log(zap.WarnLevel, r, msg, err)
	e.respond(w, r, http.StatusBadRequest, "Bad request", userMsg, backURL)
}

// LogNotFound logs at info level and responds 404.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log(zap.InfoLevel, r, msg, err)
	if isHTMX(r) {
		http.Error(w, userMsg, http.StatusNotFound)
		return
	}
	RenderNotFound(w, r, userMsg, backURL)
}

func (e *ErrorLogger) log(level zapcore.Level, r *http.Request, msg string, err error) {
	if e == nil || e.Log == nil {
		return
	}
	if ce := e.Log.Check(level, msg); ce != nil {
		ce.Write(
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	}
}

func (e *ErrorLogger) respond(w http.ResponseWriter, r *http.Request, status int, title, userMsg, backURL string) {
	if isHTMX(r) {
		http.Error(w, userMsg, status)
		return
	}
	render(w, r, status, title, userMsg, backURL)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
