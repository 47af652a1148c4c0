package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// maxBodyBytes caps JSON request bodies at 1MB.
const maxBodyBytes = 1 << 20

// DecodeJSON reads and decodes the request body into dst. A malformed body
// writes a 400 validation/invalid-json envelope and returns false; callers
// must return immediately in that case. This runs before schema validation,
// so unparseable JSON is reported distinctly from shape errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		Err(w, r, http.StatusBadRequest, "validation/invalid-json", "Invalid JSON body")
		return false
	}
	return true
}

// QueryInt parses an integer query parameter, falling back to def for
// missing or invalid values. Negative values fall back as well.
func QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
