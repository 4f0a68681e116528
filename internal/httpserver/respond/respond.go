// Package respond writes the API's JSON bodies.
package respond

import (
	"encoding/json"
	"net/http"
)

// Message is the body of every error and of plain acknowledgements.
type Message struct {
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"message": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Message{Message: msg})
}

// OK writes {"message": msg} with 200.
func OK(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, Message{Message: msg})
}
