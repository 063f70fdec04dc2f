package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// maxBodyBytes bounds ingest payloads; field devices send at most a
// few KB per report.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// readJSON decodes the request body into out. An empty body is
// reported as errEmptyBody so handlers can answer it distinctly.
func readJSON(r *http.Request, out any) error {
	_, err := readRawJSON(r, out)
	return err
}

// readRawJSON decodes the body and also returns the raw bytes, for
// handlers that archive the full payload as audit metadata.
func readRawJSON(r *http.Request, out any) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errEmptyBody
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, err
	}
	return body, nil
}

func parseIntQuery(r *http.Request, key string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, err
	}
	return parsed, nil
}
