package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/example/ec-admin-console/internal/audit"
	"github.com/example/ec-admin-console/internal/query"
	"github.com/example/ec-admin-console/internal/readmodel"
	"github.com/example/ec-admin-console/internal/view"
)

const fromOverview = "overview"

type ordersData struct {
	List   view.ListState
	Pager  view.Pager
	Orders []readmodel.OrderReadModel
}

type orderDetailData struct {
	ID       string
	Order    *readmodel.OrderReadModel
	From     string
	Page     int
	Statuses []readmodel.OrderStatus
}

// BackURL is where the detail view returns to
func (d orderDetailData) BackURL() string {
	return originURL(d.From, d.Page)
}

func originURL(from string, page int) string {
	if from == fromOverview {
		return "/"
	}
	return view.ListState{Page: page}.URL("/orders")
}

// Orders renders one server page of orders. The q filter applies to the rows
// of that page only.
func (h *Handlers) Orders(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Orders", "orders")
	if !ok {
		return
	}
	list := view.ParseListState(r.URL.Query())
	data := ordersData{List: list}
	p.Data = &data

	page, err := h.client.ListOrders(r.Context(), list.Page)
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "list orders", err)
		p.Status = view.Failed(userMessage(err))
		h.render(w, r, httpStatus(err), "orders.html", p)
		return
	}

	pager, err := view.NewPager(page.CurrentPage, page.TotalPages)
	if err != nil {
		h.logger.WarnContext(r.Context(), "api returned an inconsistent page", "error", err)
		pager = view.Pager{Current: list.Page}
	}
	data.Pager = pager
	data.List = list.WithPage(pager.Current)
	data.Orders = query.FilterOrders(page.Orders, list.Query)
	h.render(w, r, http.StatusOK, "orders.html", p)
}

// OrderDetail shows one order with its status selector. A load failure
// renders the page with N/A fields and the error.
func (h *Handlers) OrderDetail(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Order Details", "orders")
	if !ok {
		return
	}
	id := pathID(r)
	page := view.ParseListState(r.URL.Query()).Page
	data := orderDetailData{
		ID:       id,
		From:     r.URL.Query().Get("from"),
		Page:     page,
		Statuses: readmodel.OrderStatuses,
	}
	if data.From == fromOverview {
		p.Nav = "overview"
	}
	p.Data = &data

	order, err := h.client.GetOrder(r.Context(), id)
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "load order", err)
		p.Status = view.Failed(userMessage(err))
		h.render(w, r, httpStatus(err), "order_detail.html", p)
		return
	}
	data.Order = order
	h.render(w, r, http.StatusOK, "order_detail.html", p)
}

// UpdateOrderStatus sends the new status and returns to the view the detail
// was opened from.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	from := r.FormValue("from")
	page, _ := strconv.Atoi(r.FormValue("page"))
	detailURL := "/orders/" + id + "?" + detailQuery(from, page)

	status := readmodel.OrderStatus(r.FormValue("orderStatus"))
	if !status.Valid() {
		h.flash(w, r, view.FlashError, "Invalid order status")
		h.redirect(w, r, detailURL)
		return
	}

	err := h.mutate(r.Context(), "order.status", id, []string{string(status)}, func(ctx context.Context) error {
		return h.client.UpdateOrderStatus(ctx, id, status)
	})
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "update order status", err)
		h.flash(w, r, view.FlashError, userMessage(err))
		h.redirect(w, r, detailURL)
		return
	}

	h.record(r.Context(), audit.OrderStatusChanged, id, map[string]string{"status": string(status)})
	h.flash(w, r, view.FlashSuccess, "Order status updated successfully!")
	h.redirect(w, r, originURL(from, page))
}

func detailQuery(from string, page int) string {
	if from != fromOverview {
		from = "orders"
	}
	if page < 1 {
		page = 1
	}
	return "from=" + from + "&page=" + strconv.Itoa(page)
}
