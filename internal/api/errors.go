package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/vampirenirmal/lumina/internal/export"
	"github.com/vampirenirmal/lumina/internal/session"
)

const (
	headerContentType        = "Content-Type"
	headerContentDisposition = "Content-Disposition"
	contentTypeJSONUTF8      = "application/json; charset=utf-8"
	contentTypeTextPlainUTF8 = "text/plain; charset=utf-8"
)

// HTTPError is an error with a status code and a message safe to show
// to the client.
type HTTPError struct {
	cause   error
	Code    int
	Message string
}

func (he *HTTPError) Error() string {
	return he.Message
}

func (he *HTTPError) Unwrap() error {
	return he.cause
}

func errBadRequest(message string, cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: http.StatusBadRequest, Message: message}
}

func errNotFound(message string) *HTTPError {
	return &HTTPError{cause: errors.New(message), Code: http.StatusNotFound, Message: message}
}

// appHandler is a handler that reports failure by returning an error.
type appHandler func(w http.ResponseWriter, r *http.Request) error

// makeHandler adapts an appHandler, turning its error into a JSON error
// response with a status matching the error kind.
func makeHandler(h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		code, message := classify(err)
		level := slog.LevelWarn
		if code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "Request failed",
			"code", code,
			"path", r.URL.Path,
			"method", r.Method,
			"error", err)

		respondJSON(w, code, errorResponse{Error: message})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func classify(err error) (int, string) {
	var httpErr *HTTPError
	var notice *session.Notice
	var invalid validator.ValidationErrors

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code, httpErr.Message
	case errors.As(err, &notice):
		return http.StatusBadGateway, notice.Message
	case errors.As(err, &invalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, export.ErrUnknownFormat):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, session.ErrInvalidProfile), errors.Is(err, session.ErrEmptyInstruction):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set(headerContentType, contentTypeJSONUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}
	w.Header().Set(headerContentType, contentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadRequest("Invalid request body", err)
	}
	return nil
}
