package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/ec-admin-console/internal/readmodel"
)

// ListOrders fetches one server-side page of orders. Page size is decided by
// the API.
func (c *Client) ListOrders(ctx context.Context, page int) (*readmodel.OrderPage, error) {
	req, _ := jsonRequest(http.MethodGet, "/api/orders", nil, "Failed to load orders")
	req.query = url.Values{"page": {strconv.Itoa(page)}}

	var p readmodel.OrderPage
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*readmodel.OrderReadModel, error) {
	req, _ := jsonRequest(http.MethodGet, "/api/orders/"+id, nil, "Failed to load order details")
	var o readmodel.OrderReadModel
	if err := c.do(ctx, req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status readmodel.OrderStatus) error {
	req, err := jsonRequest(http.MethodPut, "/api/orders/"+id+"/status", map[string]readmodel.OrderStatus{
		"orderStatus": status,
	}, "Failed to update order status")
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
