// Package projection turns the API's dashboard aggregate into what the
// overview page shows: counters, chart specs and the recent orders strip.
package projection

import (
	"time"

	"github.com/example/ec-admin-console/internal/charts"
	"github.com/example/ec-admin-console/internal/readmodel"
)

const (
	// RevenueWindowDays is the length of the revenue calendar ending today
	RevenueWindowDays = 30
	// RecentOrderLimit caps the recent orders strip
	RecentOrderLimit = 5

	SlotOrderStatus      = "orderStatus"
	SlotRevenueOverTime  = "revenueOverTime"
	SlotOrdersPerProduct = "ordersPerProduct"

	dayLayout = "2006-01-02"
)

// Counters are the scalar tiles of the overview
type Counters struct {
	TotalOrders    int
	PendingOrders  int
	ShippedOrders  int
	CanceledOrders int
	TotalProducts  int
	TotalRevenue   float64
}

// DayRevenue is one day of the dense revenue calendar
type DayRevenue struct {
	Date    string
	Revenue float64
}

// Overview is the projected dashboard
type Overview struct {
	Counters Counters
	Recent   []readmodel.OrderReadModel
	Revenue  []DayRevenue
}

// Projector projects stats into an overview. now decides which day the
// revenue calendar ends on.
type Projector struct {
	now func() time.Time
}

func NewProjector(now func() time.Time) *Projector {
	if now == nil {
		now = time.Now
	}
	return &Projector{now: now}
}

// Project builds the overview and installs its three charts on board,
// replacing any charts a previous projection left there.
func (p *Projector) Project(board *charts.Board, stats *readmodel.Stats, orders *readmodel.OrderPage) *Overview {
	if stats == nil {
		stats = &readmodel.Stats{}
	}
	ov := &Overview{
		Counters: Counters{
			TotalOrders:    stats.TotalOrders,
			PendingOrders:  stats.PendingOrders,
			ShippedOrders:  stats.ShippedOrders,
			CanceledOrders: stats.CanceledOrders,
			TotalProducts:  stats.TotalProducts,
			TotalRevenue:   stats.TotalRevenue,
		},
		Revenue: RevenueSeries(stats.RevenueOverTime, p.now()),
	}
	if orders != nil {
		ov.Recent = RecentOrders(orders.Orders)
	}

	board.Replace(SlotOrderStatus, OrderStatusChart(stats))
	board.Replace(SlotRevenueOverTime, RevenueChart(ov.Revenue))
	board.Replace(SlotOrdersPerProduct, OrdersPerProductChart(stats.OrdersPerProduct))
	return ov
}

// RevenueSeries left-joins the sparse per-day revenue onto the calendar of
// the RevenueWindowDays days ending on today (UTC dates). Missing days are
// zero; when a day appears twice the first entry wins.
func RevenueSeries(points []readmodel.RevenuePoint, today time.Time) []DayRevenue {
	byDay := make(map[string]float64, len(points))
	for _, pt := range points {
		if _, seen := byDay[pt.Date]; !seen {
			byDay[pt.Date] = pt.TotalRevenue
		}
	}

	end := today.UTC()
	series := make([]DayRevenue, 0, RevenueWindowDays)
	for i := RevenueWindowDays - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i).Format(dayLayout)
		series = append(series, DayRevenue{Date: day, Revenue: byDay[day]})
	}
	return series
}

// RecentOrders returns the first RecentOrderLimit orders of page one
func RecentOrders(orders []readmodel.OrderReadModel) []readmodel.OrderReadModel {
	if len(orders) > RecentOrderLimit {
		return orders[:RecentOrderLimit]
	}
	return orders
}

func OrderStatusChart(stats *readmodel.Stats) charts.Spec {
	return charts.Spec{
		Kind:   charts.Pie,
		Title:  "Order Status Distribution",
		Labels: []string{"Pending", "Shipped", "Canceled"},
		Datasets: []charts.Dataset{{
			Data: []float64{
				float64(stats.PendingOrders),
				float64(stats.ShippedOrders),
				float64(stats.CanceledOrders),
			},
			BackgroundColor: []string{"rgba(255, 206, 86, 0.6)", "rgba(75, 192, 192, 0.6)", "rgba(255, 99, 132, 0.6)"},
			BorderColor:     []string{"rgba(255, 206, 86, 1)", "rgba(75, 192, 192, 1)", "rgba(255, 99, 132, 1)"},
			BorderWidth:     1,
		}},
	}
}

func RevenueChart(series []DayRevenue) charts.Spec {
	labels := make([]string, len(series))
	values := make([]float64, len(series))
	for i, d := range series {
		labels[i] = d.Date
		values[i] = d.Revenue
	}
	return charts.Spec{
		Kind:   charts.Line,
		Title:  "Revenue Over Time (Last 30 Days)",
		Labels: labels,
		Datasets: []charts.Dataset{{
			Label:           "Revenue (₦)",
			Data:            values,
			BorderColor:     "rgba(75, 192, 192, 1)",
			BackgroundColor: "rgba(75, 192, 192, 0.2)",
			Fill:            true,
			Tension:         0.3,
		}},
		XTitle:      "Date",
		YTitle:      "Revenue (₦)",
		MaxXTicks:   10,
		BeginAtZero: true,
	}
}

func OrdersPerProductChart(counts []readmodel.ProductOrderCount) charts.Spec {
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Product
		values[i] = float64(c.OrderCount)
	}
	return charts.Spec{
		Kind:   charts.Bar,
		Title:  "Orders Per Product",
		Labels: labels,
		Datasets: []charts.Dataset{{
			Label:           "Number of Orders",
			Data:            values,
			BackgroundColor: "rgba(54, 162, 235, 0.6)",
			BorderColor:     "rgba(54, 162, 235, 1)",
			BorderWidth:     1,
		}},
		XTitle:      "Product",
		YTitle:      "Number of Orders",
		YStepSize:   1,
		BeginAtZero: true,
	}
}
