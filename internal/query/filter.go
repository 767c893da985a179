// Package query applies the console's client-side filters to the rows of
// one API response. Filters never trigger a fetch and never cross a page
// boundary.
package query

import (
	"strings"

	"github.com/example/ec-admin-console/internal/readmodel"
)

// MessageFilter selects messages by read flag
type MessageFilter string

const (
	MessagesAll    MessageFilter = "all"
	MessagesUnread MessageFilter = "unread"
	MessagesRead   MessageFilter = "read"
)

// MessageFilters lists the filter choices in display order
var MessageFilters = []MessageFilter{MessagesAll, MessagesUnread, MessagesRead}

// ParseMessageFilter maps unknown values to MessagesAll
func ParseMessageFilter(s string) MessageFilter {
	switch f := MessageFilter(strings.ToLower(s)); f {
	case MessagesUnread, MessagesRead:
		return f
	}
	return MessagesAll
}

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

// FilterProducts keeps products whose name contains q, ignoring case. An
// empty q keeps everything.
func FilterProducts(products []readmodel.ProductReadModel, q string) []readmodel.ProductReadModel {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return products
	}
	out := make([]readmodel.ProductReadModel, 0, len(products))
	for _, p := range products {
		if contains(p.Name, needle) {
			out = append(out, p)
		}
	}
	return out
}

// FilterOrders keeps orders whose customer name, email or order number
// contains q, ignoring case.
func FilterOrders(orders []readmodel.OrderReadModel, q string) []readmodel.OrderReadModel {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return orders
	}
	out := make([]readmodel.OrderReadModel, 0, len(orders))
	for _, o := range orders {
		if contains(o.Name, needle) || contains(o.Email, needle) || contains(o.OrderNumber, needle) {
			out = append(out, o)
		}
	}
	return out
}

func FilterMessages(messages []readmodel.MessageReadModel, f MessageFilter) []readmodel.MessageReadModel {
	if f != MessagesUnread && f != MessagesRead {
		return messages
	}
	wantRead := f == MessagesRead
	out := make([]readmodel.MessageReadModel, 0, len(messages))
	for _, m := range messages {
		if m.Read == wantRead {
			out = append(out, m)
		}
	}
	return out
}
