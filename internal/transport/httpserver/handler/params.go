package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// parseNowParam reads the optional "now" query parameter used to pin the
// dashboard and report clock. Empty means the server clock.
func parseNowParam(r *http.Request) (time.Time, error) {
	value := strings.TrimSpace(r.URL.Query().Get("now"))
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("now must be an RFC 3339 timestamp")
	}
	return parsed, nil
}

func pathID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}
