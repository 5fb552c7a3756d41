package shared

import (
	"net/http"
	"strconv"
)

// Page is the limit/offset window taken from the query string. Missing or
// malformed values fall back to the defaults instead of erroring.
type Page struct {
	Limit  int
	Offset int
}

func ParsePage(r *http.Request, defaultLimit, maxLimit int) Page {
	p := Page{Limit: defaultLimit}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		p.Limit = n
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && n >= 0 {
		p.Offset = n
	}
	return p
}
