package problems

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"absolute/pkg/absolute"
)

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Base returns the base URL for problem type identifiers.
// Order of precedence:
// 1. PROBLEM_BASE_URL (exact base, e.g. https://mydomain.com/problems)
// 2. the request root + "/problems"
func Base(r *http.Request) string {
	if b := os.Getenv("PROBLEM_BASE_URL"); b != "" {
		return strings.TrimRight(b, "/")
	}
	return absolute.AbsoluteURL(absolute.FromHTTP(r, false), "/problems")
}

// Type builds a full problem type URL for the given slug.
func Type(r *http.Request, slug string) string { return Base(r) + "/" + slug }

// Write sends a problem+json response.
func Write(w http.ResponseWriter, r *http.Request, status int, slug, detail string) {
	p := Problem{
		Type:     Type(r, slug),
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}
