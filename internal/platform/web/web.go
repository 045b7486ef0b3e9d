package web

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error is the error type returned by handlers in the web layer. Reason is a
// machine-readable code that clients branch on; Message is for humans.
type Error struct {
	Code    int
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Handler is a handler func that reports failures as *Error instead of
// writing them inline.
type Handler func(w http.ResponseWriter, r *http.Request) *Error

func (fn Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		WriteError(w, r, err)
	}
}

// WriteError logs the error and writes its JSON representation.
func WriteError(w http.ResponseWriter, r *http.Request, err *Error) {
	log.Error().
		Err(err.Err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("reason", err.Reason).
		Int("status", err.Code).
		Msg(err.Message)

	body := map[string]string{"error": err.Message}
	if err.Reason != "" {
		body["code"] = err.Reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	_ = json.NewEncoder(w).Encode(body)
}
