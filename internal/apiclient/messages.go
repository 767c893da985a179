package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/ec-admin-console/internal/readmodel"
)

func (c *Client) ListMessages(ctx context.Context, page int) (*readmodel.MessagePage, error) {
	req, _ := jsonRequest(http.MethodGet, "/api/admin/messages", nil, "Failed to load messages")
	req.query = url.Values{"page": {strconv.Itoa(page)}}

	var p readmodel.MessagePage
	if err := c.do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ToggleMessageRead flips the read flag server-side
func (c *Client) ToggleMessageRead(ctx context.Context, id string) error {
	req, _ := jsonRequest(http.MethodPut, "/api/admin/messages/"+id+"/read", nil, "Failed to update message")
	return c.do(ctx, req, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	req, _ := jsonRequest(http.MethodDelete, "/api/admin/messages/"+id, nil, "Failed to delete message")
	return c.do(ctx, req, nil)
}

// ReplyToMessage sends reply to the message's sender. Nothing is stored
// locally.
func (c *Client) ReplyToMessage(ctx context.Context, id, reply string) error {
	req, err := jsonRequest(http.MethodPost, "/api/admin/messages/reply", map[string]string{
		"messageId": id,
		"reply":     reply,
	}, "Failed to send reply")
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
