// Package http provides http transport for search
package http

import (
	stdhttp "net/http"

	"plateful/internal/modkit/httpkit"
	"plateful/internal/services/search/domain"
)

// Register mounts search endpoints on the given router
func Register(r httpkit.Router, q domain.QueryPort) {
	h := &handlers{q: q}

	// plan + execute + coverage
	httpkit.PostJSON[domain.SearchRequest](r, "/", h.search)

	// plan preview without touching the store
	httpkit.PostJSON[domain.SearchRequest](r, "/plan", h.plan)
}

type handlers struct{ q domain.QueryPort }

// swagger:route POST /search Search search
// @Summary Execute a restaurant and dish search
// @Tags Search
// @Accept json
// @Produce json
// @Param payload body domain.SearchRequest true "Resolved search request"
// @Success 200 {object} domain.SearchResponse "ok"
// @Router /search [post]
func (h *handlers) search(r *stdhttp.Request, in domain.SearchRequest) (any, error) {
	return h.q.Search(r.Context(), in)
}

// swagger:route POST /search/plan Search searchPlan
// @Summary Preview the query plan and SQL for a request
// @Tags Search
// @Accept json
// @Produce json
// @Param payload body domain.SearchRequest true "Resolved search request"
// @Success 200 {object} domain.PlanPreview "ok"
// @Router /search/plan [post]
func (h *handlers) plan(r *stdhttp.Request, in domain.SearchRequest) (any, error) {
	return h.q.Plan(r.Context(), in)
}
