package httpapi

import "net/http"

// APIKeyGate implements the two-tier shared-secret scheme devices
// authenticate with. The write key authorizes ingestion and admin
// calls, the read key only queries, and the legacy key satisfies both
// tiers. When no key is configured at all the gate allows everything
// (development mode); as soon as any key exists, unmatched requests
// are rejected. A configured but empty key counts as unconfigured and
// never matches.
type APIKeyGate struct {
	write  string
	read   string
	legacy string
}

func NewAPIKeyGate(write, read, legacy string) *APIKeyGate {
	return &APIKeyGate{write: write, read: read, legacy: legacy}
}

// DevMode reports whether the gate waves everything through.
func (g *APIKeyGate) DevMode() bool {
	return g.write == "" && g.read == "" && g.legacy == ""
}

// AllowWrite authorizes ingestion and admin operations.
func (g *APIKeyGate) AllowWrite(key string) bool {
	if g.write != "" && key == g.write {
		return true
	}
	if g.legacy != "" && key == g.legacy {
		return true
	}
	return g.DevMode()
}

// AllowRead authorizes query operations. Write and legacy keys imply
// read access; the read key never implies write access.
func (g *APIKeyGate) AllowRead(key string) bool {
	if g.read != "" && key == g.read {
		return true
	}
	return g.AllowWrite(key)
}

func apiKey(r *http.Request) string {
	return r.Header.Get("X-API-Key")
}

// requireWrite rejects the request unless it carries a write-tier key.
// The body never hints at which keys are configured.
func (g *APIKeyGate) requireWrite(w http.ResponseWriter, r *http.Request) bool {
	if g.AllowWrite(apiKey(r)) {
		return true
	}
	writeError(w, http.StatusUnauthorized, "Unauthorized - Invalid or missing write API key")
	return false
}

func (g *APIKeyGate) requireRead(w http.ResponseWriter, r *http.Request) bool {
	if g.AllowRead(apiKey(r)) {
		return true
	}
	writeError(w, http.StatusUnauthorized, "Unauthorized - Invalid or missing API key")
	return false
}
