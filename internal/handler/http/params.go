package http

import (
	"net/http"
	"strconv"

	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/httputil"
)

// parseListParams extracts page/per_page/category query parameters, applying
// defaults and bounds. Returns false after writing the error response.
func parseListParams(w http.ResponseWriter, r *http.Request) (repository.ListParams, bool) {
	params := repository.ListParams{
		Page:     1,
		PerPage:  20,
		Category: r.URL.Query().Get("category"),
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a positive integer"},
			})
			return params, false
		}
		params.Page = page
	}

	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be between 1 and 100"},
			})
			return params, false
		}
		params.PerPage = perPage
	}

	return params, true
}
