package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// DecodeJSON decodes the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// PathID parses the named path value as a positive numeric id.
func PathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// IntQuery reads a query parameter as an int, falling back to def when the
// parameter is absent or malformed, and clamping it to [min, max].
func IntQuery(r *http.Request, name string, def, min, max int) int {
	v := def
	if s := r.URL.Query().Get(name); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			v = parsed
		}
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v
}
