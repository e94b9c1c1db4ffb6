package server

import (
	"net/http"
	"strconv"
)

const defaultListLimit = 50

// listParams are the shared search/pagination query parameters of the name
// listing endpoints.
type listParams struct {
	Search string
	Offset int
	Limit  int
}

func listParamsFromRequest(r *http.Request) listParams {
	q := r.URL.Query()
	p := listParams{Search: q.Get("search"), Limit: defaultListLimit}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		p.Offset = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	return p
}

type nameListResponse struct {
	Names []string `json:"names"`
	Total int64    `json:"total"`
}
