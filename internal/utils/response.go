package utils

import (
	"net/http"
)

// WriteText writes a plain-text response and flushes it to the client,
// returning any error from writing or flushing
func WriteText(w http.ResponseWriter, status int, body string) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		return err
	}
	return http.NewResponseController(w).Flush()
}
