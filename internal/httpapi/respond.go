package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/ZaguanLabs/gotara/internal/logger"
)

// errorBody is the JSON body of every non-2xx response.
type errorBody struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// writeJSON writes v as application/json with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an errorBody carrying the request id.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string, fields map[string]string) {
	writeJSON(w, status, errorBody{
		Error:     msg,
		Fields:    fields,
		RequestID: logger.RequestID(r.Context()),
	})
}
