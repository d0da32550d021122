package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 50
)

// safeLimit parses a user-supplied list limit and clamps it to [1, 50].
// Anything unparseable falls back to the default of 5.
func safeLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultRecentLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultRecentLimit
	}
	if n < 1 {
		return 1
	}
	if n > maxRecentLimit {
		return maxRecentLimit
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}
