package api

import (
	"net/http"

	"github.com/example/ec-admin-console/internal/charts"
	"github.com/example/ec-admin-console/internal/projection"
	"github.com/example/ec-admin-console/internal/view"
)

type overviewData struct {
	Overview *projection.Overview
	Charts   []*charts.Instance
}

// Overview loads stats, then the first orders page, and renders the
// dashboard. A failure of either aborts the rest and shows an error panel
// with no charts.
func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Overview", "overview")
	if !ok {
		return
	}
	ctx := r.Context()
	board := charts.NewBoard()
	data := overviewData{Overview: &projection.Overview{}}
	p.Data = &data

	fail := func(op string, err error) {
		h.logFailure(r, op, err)
		board.Clear()
		p.Status = view.Failed(userMessage(err))
		h.render(w, r, httpStatus(err), "overview.html", p)
	}

	stats, err := h.client.Stats(ctx)
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		fail("load stats", err)
		return
	}

	orders, err := h.client.ListOrders(ctx, 1)
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		fail("load recent orders", err)
		return
	}

	data.Overview = h.projector.Project(board, stats, orders)
	for _, inst := range board.Instances() {
		if err := inst.Spec.Validate(); err != nil {
			h.logger.WarnContext(ctx, "dropping invalid chart", "slot", inst.Slot, "error", err)
			continue
		}
		data.Charts = append(data.Charts, inst)
	}
	p.Status = view.Status{State: view.StateSuccess}
	h.render(w, r, http.StatusOK, "overview.html", p)
}
