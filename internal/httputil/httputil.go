// Package httputil holds small helpers shared by the HTTP transports.
package httputil

import (
	"encoding/json"
	"net"
	"net/http"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response with proper headers
func WriteJSON(w http.ResponseWriter, code int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes {"error": msg} with the given status.
func WriteError(w http.ResponseWriter, code int, msg string) error {
	return WriteJSON(w, code, ErrorBody{Error: msg})
}

// ClientIP returns the host part of r.RemoteAddr.
// Forwarding headers are ignored; deployments behind a trusted proxy rewrite
// RemoteAddr upstream (chi middleware.RealIP in cmd/billingview).
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
