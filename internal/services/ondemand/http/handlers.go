// Package http provides http transport for ondemand
package http

import (
	stdhttp "net/http"

	"plateful/internal/modkit/httpkit"
	"plateful/internal/services/ondemand/domain"
)

// EnqueueRequest is the batch trigger payload
type EnqueueRequest struct {
	Inputs []domain.Input `json:"inputs" validate:"required,min=1,max=50,dive"`
}

// EnqueueResponse pairs each input with its admission receipt, in order
type EnqueueResponse struct {
	Receipts []domain.Receipt `json:"receipts"`
}

// Register mounts ondemand endpoints on the given router
func Register(r httpkit.Router, enq domain.EnqueuePort, st domain.StatusPort) {
	h := &handlers{enq: enq, st: st}

	httpkit.PostJSON[EnqueueRequest](r, "/enqueue", h.enqueue)
	httpkit.Get(r, "/status", h.status)
}

type handlers struct {
	enq domain.EnqueuePort
	st  domain.StatusPort
}

// swagger:route POST /ondemand/enqueue Ondemand ondemandEnqueue
// @Summary Trigger collection for missing or thin search terms
// @Tags Ondemand
// @Accept json
// @Produce json
// @Param payload body EnqueueRequest true "Collection triggers"
// @Success 200 {object} EnqueueResponse "ok"
// @Router /ondemand/enqueue [post]
func (h *handlers) enqueue(r *stdhttp.Request, in EnqueueRequest) (any, error) {
	recs, err := h.enq.Enqueue(r.Context(), in.Inputs)
	if err != nil {
		return nil, err
	}
	return EnqueueResponse{Receipts: recs}, nil
}

// swagger:route GET /ondemand/status Ondemand ondemandStatus
// @Summary Report the on-demand backlog by status
// @Tags Ondemand
// @Produce json
// @Success 200 {object} domain.BacklogCounts "ok"
// @Router /ondemand/status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return h.st.Backlog(r.Context())
}
