package httpx

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const MaxBodyBytes = 1 << 20

// CORS headers sent on every function response, errors included.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Authorization",
}

func SetCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	for k, v := range corsHeaders {
		h.Set(k, v)
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

type ErrorBody struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, status int, msg string, logger *zap.Logger) {
	WriteJSON(w, status, ErrorBody{Error: msg}, logger)
}

// DecodeJSON reads at most MaxBodyBytes of r's body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
