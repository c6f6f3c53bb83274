package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"finboard/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// bearerToken pulls the session token from the Authorization header or
// the session cookie.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie("session"); err == nil {
		return c.Value
	}
	return ""
}

// queryTimeFrame parses the time_frame query parameter, defaulting to
// monthly.
func queryTimeFrame(r *http.Request) (core.TimeFrame, error) {
	raw := r.URL.Query().Get("time_frame")
	if raw == "" {
		return core.Monthly, nil
	}
	return core.ParseTimeFrame(raw)
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, key string) (core.Date, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return core.Date{}, false, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, false, err
	}
	return d, true, nil
}
