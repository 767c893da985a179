package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-admin-console/internal/charts"
	"github.com/example/ec-admin-console/internal/readmodel"
)

var today = time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

func newTestProjector() *Projector {
	return NewProjector(func() time.Time { return today })
}

func TestRevenueSeries_DenseThirtyDays(t *testing.T) {
	series := RevenueSeries([]readmodel.RevenuePoint{
		{Date: "2025-03-10", TotalRevenue: 5000},
		{Date: "2025-02-09", TotalRevenue: 700},
		{Date: "2025-02-01", TotalRevenue: 999}, // outside the window
		{Date: "2025-03-10", TotalRevenue: 1},   // duplicate day, ignored
	}, today)

	require.Len(t, series, RevenueWindowDays)
	assert.Equal(t, "2025-02-09", series[0].Date)
	assert.Equal(t, 700.0, series[0].Revenue)
	assert.Equal(t, "2025-03-10", series[29].Date)
	assert.Equal(t, 5000.0, series[29].Revenue)

	for _, d := range series[1:29] {
		assert.Zero(t, d.Revenue, d.Date)
	}
}

func TestRevenueSeries_EmptyInput(t *testing.T) {
	series := RevenueSeries(nil, today)

	require.Len(t, series, 30)
	for _, d := range series {
		assert.Zero(t, d.Revenue)
	}
}

func TestRevenueSeries_UsesUTCDate(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)
	// 00:30 local on the 11th is still the 10th in UTC
	series := RevenueSeries(nil, time.Date(2025, 3, 11, 0, 30, 0, 0, lagos))
	assert.Equal(t, "2025-03-10", series[29].Date)
}

func TestProjector_Project(t *testing.T) {
	p := newTestProjector()
	board := charts.NewBoard()

	orders := make([]readmodel.OrderReadModel, 9)
	for i := range orders {
		orders[i].ID = string(rune('a' + i))
	}

	ov := p.Project(board, &readmodel.Stats{
		TotalOrders:      9,
		PendingOrders:    4,
		ShippedOrders:    3,
		CanceledOrders:   2,
		TotalProducts:    12,
		TotalRevenue:     250000,
		OrdersPerProduct: []readmodel.ProductOrderCount{{Product: "Kettle", OrderCount: 6}},
	}, &readmodel.OrderPage{Orders: orders, TotalPages: 3, CurrentPage: 1})

	assert.Equal(t, Counters{
		TotalOrders: 9, PendingOrders: 4, ShippedOrders: 3, CanceledOrders: 2,
		TotalProducts: 12, TotalRevenue: 250000,
	}, ov.Counters)
	require.Len(t, ov.Recent, RecentOrderLimit)
	assert.Equal(t, "a", ov.Recent[0].ID)
	assert.Len(t, ov.Revenue, 30)

	require.Equal(t, 3, board.Len())
	pie, ok := board.Get(SlotOrderStatus)
	require.True(t, ok)
	assert.Equal(t, []float64{4, 3, 2}, pie.Spec.Datasets[0].Data)
	bar, _ := board.Get(SlotOrdersPerProduct)
	assert.Equal(t, []string{"Kettle"}, bar.Spec.Labels)

	for _, inst := range board.Instances() {
		assert.NoError(t, inst.Spec.Validate(), inst.Slot)
	}
}

func TestProjector_ProjectTwiceDisposesOldCharts(t *testing.T) {
	p := newTestProjector()
	board := charts.NewBoard()

	p.Project(board, &readmodel.Stats{}, nil)
	first := board.Instances()
	p.Project(board, &readmodel.Stats{PendingOrders: 1}, nil)

	assert.Equal(t, 3, board.Len())
	for _, inst := range first {
		assert.True(t, inst.Disposed(), inst.Slot)
	}
}

func TestProjector_MissingStatsDecodeAsZero(t *testing.T) {
	ov := newTestProjector().Project(charts.NewBoard(), nil, nil)

	assert.Equal(t, Counters{}, ov.Counters)
	assert.Empty(t, ov.Recent)
}
