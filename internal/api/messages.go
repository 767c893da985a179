package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/example/ec-admin-console/internal/audit"
	"github.com/example/ec-admin-console/internal/query"
	"github.com/example/ec-admin-console/internal/readmodel"
	"github.com/example/ec-admin-console/internal/validate"
	"github.com/example/ec-admin-console/internal/view"
)

// replyDismissMs is how long the reply banner stays up
const replyDismissMs = 3000

type messagesData struct {
	List     view.ListState
	Filter   query.MessageFilter
	Filters  []query.MessageFilter
	Pager    view.Pager
	Messages []readmodel.MessageReadModel
}

// FilterURL links to the first page of the list under f
func (d messagesData) FilterURL(f query.MessageFilter) string {
	list := view.ListState{Query: d.List.Query}
	if f != query.MessagesAll {
		list.Filter = string(f)
	}
	return list.URL("/messages")
}

type messageActionData struct {
	ID    string
	To    string
	Reply string
	List  view.ListState
}

// BackURL returns to the list the action was started from
func (d messageActionData) BackURL() string {
	return d.List.URL("/messages")
}

// listFrom reads the list position a message action carries along
func listFrom(v url.Values) view.ListState {
	list := view.ParseListState(v)
	list.Filter = string(query.ParseMessageFilter(list.Filter))
	if list.Filter == string(query.MessagesAll) {
		list.Filter = ""
	}
	return list
}

// Messages renders one server page of customer messages, filtered by read
// state.
func (h *Handlers) Messages(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Messages", "messages")
	if !ok {
		return
	}
	list := listFrom(r.URL.Query())
	filter := query.ParseMessageFilter(list.Filter)
	data := messagesData{List: list, Filter: filter, Filters: query.MessageFilters}
	p.Data = &data

	page, err := h.client.ListMessages(r.Context(), list.Page)
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "list messages", err)
		p.Status = view.Failed(userMessage(err))
		h.render(w, r, httpStatus(err), "messages.html", p)
		return
	}

	pager, err := view.NewPager(page.CurrentPage, page.TotalPages)
	if err != nil {
		h.logger.WarnContext(r.Context(), "api returned an inconsistent page", "error", err)
		pager = view.Pager{Current: list.Page}
	}
	data.Pager = pager
	data.List = list.WithPage(pager.Current)
	data.Messages = query.FilterMessages(page.Messages, filter)
	h.render(w, r, http.StatusOK, "messages.html", p)
}

// ToggleMessageRead flips the read flag and reloads the same list
func (h *Handlers) ToggleMessageRead(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	_ = r.ParseForm()
	list := listFrom(r.PostForm)

	err := h.mutate(r.Context(), "message.toggle", id, nil, func(ctx context.Context) error {
		return h.client.ToggleMessageRead(ctx, id)
	})
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "toggle message", err)
		h.flash(w, r, view.FlashError, userMessage(err))
	} else {
		h.record(r.Context(), audit.MessageReadToggled, id, nil)
	}
	h.redirect(w, r, list.URL("/messages"))
}

func (h *Handlers) ConfirmDeleteMessage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Delete Message", "messages")
	if !ok {
		return
	}
	p.Data = messageActionData{ID: pathID(r), List: listFrom(r.URL.Query())}
	h.render(w, r, http.StatusOK, "message_delete.html", p)
}

// DeleteMessage deletes only with the confirmation; otherwise the
// confirmation is shown again.
func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	_ = r.ParseForm()
	list := listFrom(r.PostForm)

	var err error
	if r.PostFormValue("confirm") == confirmValue {
		err = h.mutate(r.Context(), "message.delete", id, nil, func(ctx context.Context) error {
			return h.client.DeleteMessage(ctx, id)
		})
		if err == nil {
			h.record(r.Context(), audit.MessageDeleted, id, nil)
			h.flash(w, r, view.FlashSuccess, "Message deleted successfully!")
			h.redirect(w, r, list.URL("/messages"))
			return
		}
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "delete message", err)
	}

	p, ok := h.newPage(w, r, "Delete Message", "messages")
	if !ok {
		return
	}
	p.Data = messageActionData{ID: id, List: list}
	status := http.StatusOK
	if err != nil {
		p.Status = view.Failed(userMessage(err))
		status = httpStatus(err)
	}
	h.render(w, r, status, "message_delete.html", p)
}

func (h *Handlers) ReplyForm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Reply to Message", "messages")
	if !ok {
		return
	}
	q := r.URL.Query()
	p.Data = messageActionData{ID: pathID(r), To: strings.TrimSpace(q.Get("to")), List: listFrom(q)}
	h.render(w, r, http.StatusOK, "message_reply.html", p)
}

// Reply sends the reply through the API. The success banner dismisses
// itself after a few seconds.
func (h *Handlers) Reply(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	_ = r.ParseForm()
	list := listFrom(r.PostForm)
	reply := r.PostFormValue("reply")

	err := validate.Reply(reply)
	if err == nil {
		text := strings.TrimSpace(reply)
		err = h.mutate(r.Context(), "message.reply", id, []string{text}, func(ctx context.Context) error {
			return h.client.ReplyToMessage(ctx, id, text)
		})
		if err == nil {
			h.record(r.Context(), audit.MessageReplied, id, nil)
			h.sessions.AddFlash(w, r, view.Flash{Kind: view.FlashSuccess, Message: "Reply sent successfully!", DismissMs: replyDismissMs})
			h.redirect(w, r, list.URL("/messages"))
			return
		}
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "reply to message", err)
	}

	p, ok := h.newPage(w, r, "Reply to Message", "messages")
	if !ok {
		return
	}
	p.Data = messageActionData{ID: id, To: strings.TrimSpace(r.PostFormValue("to")), Reply: reply, List: list}
	p.Status = view.Failed(userMessage(err))
	h.render(w, r, httpStatus(err), "message_reply.html", p)
}
