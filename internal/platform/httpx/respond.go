// Package httpx writes the API's JSON and RFC 7807 responses.
package httpx

import (
	"encoding/json"
	"net/http"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeProblem = "application/problem+json"
	problemTypeBlank   = "about:blank"
)

// ProblemDetail is the RFC 7807 body returned for every failed request.
type ProblemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, contentTypeJSON, data)
}

// Problem writes an application/problem+json body. Type is always about:blank since titles are plain status phrases.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	write(w, status, contentTypeProblem, ProblemDetail{
		Type:   problemTypeBlank,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func write(w http.ResponseWriter, status int, contentType string, body any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
