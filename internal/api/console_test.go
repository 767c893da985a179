package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-admin-console/internal/api/middleware"
	"github.com/example/ec-admin-console/internal/apiclient"
	"github.com/example/ec-admin-console/internal/apiclient/apitest"
	"github.com/example/ec-admin-console/internal/audit"
	"github.com/example/ec-admin-console/internal/projection"
	"github.com/example/ec-admin-console/internal/readmodel"
)

const csrfFieldName = "gorilla.csrf.Token"

var consoleNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// console drives the router against a fake API, carrying cookies between
// requests like a browser.
type console struct {
	t       *testing.T
	api     *apitest.Server
	audit   *audit.Recorder
	handler http.Handler
	cookies map[string]*http.Cookie

	// csrfToken is added to every form once a CSRF-protected page was read
	csrfToken string
}

func newConsole(t *testing.T) *console {
	t.Helper()
	return newConsoleWith(t, nil)
}

// newConsoleWith lets a test adjust the router config, e.g. to add the CSRF
// layer the binary runs with.
func newConsoleWith(t *testing.T, configure func(*RouterConfig)) *console {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.Handle(http.MethodGet, "/api/admin/profile", http.StatusOK, readmodel.Profile{Email: "admin@shop.test"})

	fetcher := apiclient.NewFetcher(srv.Client(),
		apiclient.WithBaseBackoff(time.Millisecond),
		apiclient.WithSleep(func(context.Context, time.Duration) error { return nil }),
	)
	client, err := apiclient.NewClient(srv.URL, fetcher, nil)
	require.NoError(t, err)

	templates, err := NewTemplateCache()
	require.NoError(t, err)

	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	sess := middleware.NewSessions(store, nil)
	rec := &audit.Recorder{}

	handlers := NewHandlers(Deps{
		Client:    client,
		Sessions:  sess,
		Templates: templates,
		Audit:     rec,
		Projector: projection.NewProjector(func() time.Time { return consoleNow }),
	})
	cfg := RouterConfig{Handlers: handlers, Sessions: sess, Now: func() time.Time { return consoleNow }}
	if configure != nil {
		configure(&cfg)
	}
	return &console{
		t:       t,
		api:     srv,
		audit:   rec,
		handler: NewRouter(cfg),
		cookies: make(map[string]*http.Cookie),
	}
}

var csrfFieldPattern = regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`)

// readCSRFToken loads path and keeps the token from its form
func (c *console) readCSRFToken(path string) {
	c.t.Helper()
	m := csrfFieldPattern.FindStringSubmatch(body(c.get(path)))
	require.Len(c.t, m, 2, "no CSRF field on %s", path)
	c.csrfToken = m[1]
}

// login signs in through the real login form
func (c *console) login() {
	c.t.Helper()
	c.api.Handle(http.MethodPost, "/api/admin/login", http.StatusOK, map[string]string{"token": "opaque-token"})
	rec := c.post("/login", url.Values{"email": {"admin@shop.test"}, "password": {"secret"}})
	require.Equal(c.t, http.StatusSeeOther, rec.Code)
	require.Equal(c.t, "/", rec.Header().Get("Location"))
	c.api.Reset()
}

func (c *console) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

// formRequest builds a form POST carrying the current cookies without
// running it, for requests that must be served concurrently.
func (c *console) formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	return req
}

func (c *console) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *console) post(path string, form url.Values) *httptest.ResponseRecorder {
	if c.csrfToken != "" {
		if form == nil {
			form = url.Values{}
		}
		form.Set(csrfFieldName, c.csrfToken)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

type filePart struct {
	name        string
	contentType string
	data        []byte
}

func (c *console) postMultipart(path string, fields map[string]string, file *filePart) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	if c.csrfToken != "" {
		require.NoError(c.t, w.WriteField(csrfFieldName, c.csrfToken))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(c.t, err)
		_, err = part.Write(file.data)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

// follow requests the redirect target of rec
func (c *console) follow(rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	c.t.Helper()
	require.Equal(c.t, http.StatusSeeOther, rec.Code)
	return c.get(rec.Header().Get("Location"))
}

func body(rec *httptest.ResponseRecorder) string {
	b, _ := io.ReadAll(rec.Body)
	return string(b)
}

func TestConsole_RequiresCredential(t *testing.T) {
	c := newConsole(t)

	for _, path := range []string{"/", "/products", "/orders", "/orders/o1", "/settings", "/messages"} {
		rec := c.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
	assert.Empty(t, c.api.Calls())
}

func TestConsole_Healthz(t *testing.T) {
	c := newConsole(t)

	rec := c.get("/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", body(rec))
}

func TestConsole_UnauthorizedEvictsEveryController(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		form      url.Values
		apiMethod string
		apiPath   string
	}{
		{"overview", http.MethodGet, "/", nil, http.MethodGet, "/api/admin/stats"},
		{"products", http.MethodGet, "/products", nil, http.MethodGet, "/api/admin/products"},
		{"edit product", http.MethodGet, "/products/p1/edit", nil, http.MethodGet, "/api/admin/products"},
		{"delete product", http.MethodPost, "/products/p1/delete", url.Values{"confirm": {"yes"}}, http.MethodDelete, "/api/admin/products/p1"},
		{"orders", http.MethodGet, "/orders", nil, http.MethodGet, "/api/orders"},
		{"order detail", http.MethodGet, "/orders/o1", nil, http.MethodGet, "/api/orders/o1"},
		{"order status", http.MethodPost, "/orders/o1/status", url.Values{"orderStatus": {"shipped"}}, http.MethodPut, "/api/orders/o1/status"},
		{"settings", http.MethodGet, "/settings", nil, http.MethodGet, "/api/admin/account"},
		{"change email", http.MethodPost, "/settings/email", url.Values{"newEmail": {"new@shop.test"}}, http.MethodPut, "/api/admin/email"},
		{"messages", http.MethodGet, "/messages", nil, http.MethodGet, "/api/admin/messages"},
		{"toggle message", http.MethodPost, "/messages/m1/toggle", url.Values{}, http.MethodPut, "/api/admin/messages/m1/read"},
		{"reply", http.MethodPost, "/messages/m1/reply", url.Values{"reply": {"Thanks"}}, http.MethodPost, "/api/admin/messages/reply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConsole(t)
			c.login()
			c.api.Handle(tt.apiMethod, tt.apiPath, http.StatusUnauthorized, apitest.Error("jwt expired"))

			var rec *httptest.ResponseRecorder
			if tt.method == http.MethodGet {
				rec = c.get(tt.path)
			} else {
				rec = c.post(tt.path, tt.form)
			}

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
			assert.NotContains(t, rec.Body.String(), "<main", "no partial page is rendered")

			login := c.follow(rec)
			assert.Equal(t, http.StatusOK, login.Code)
			assert.Contains(t, body(login), "Your session has expired. Please log in again.")

			again := c.get("/")
			assert.Equal(t, "/login", again.Header().Get("Location"), "credential was cleared")
		})
	}
}

func TestConsole_ProfileUnauthorizedEvicts(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/profile", http.StatusUnauthorized, apitest.Error("jwt expired"))

	rec := c.get("/products")

	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, c.api.CallsTo(http.MethodGet, "/api/admin/products"))
}

func TestLogin_InvalidEmailMakesNoCall(t *testing.T) {
	c := newConsole(t)

	rec := c.post("/login", url.Values{"email": {"not-an-email"}, "password": {"secret"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body(rec), "Invalid email format")
	assert.Empty(t, c.api.Calls())
}

func TestLogin_Rejected(t *testing.T) {
	c := newConsole(t)
	c.api.Handle(http.MethodPost, "/api/admin/login", http.StatusUnauthorized, apitest.Error("bad credentials"))

	rec := c.post("/login", url.Values{"email": {"admin@shop.test"}, "password": {"wrong"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	page := body(rec)
	assert.Contains(t, page, "Invalid email or password")
	assert.Contains(t, page, `value="admin@shop.test"`)
	assert.Equal(t, "/login", c.get("/").Header().Get("Location"))
}

func TestLogin_RedirectsWhenAlreadySignedIn(t *testing.T) {
	c := newConsole(t)
	c.login()

	rec := c.get("/login")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	c := newConsole(t)
	c.login()

	rec := c.post("/logout", nil)

	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, body(c.follow(rec)), "Logged out successfully!")
	assert.Equal(t, "/login", c.get("/orders").Header().Get("Location"))
}

func overviewStats() readmodel.Stats {
	return readmodel.Stats{
		TotalOrders:    12,
		PendingOrders:  4,
		ShippedOrders:  6,
		CanceledOrders: 2,
		TotalProducts:  8,
		TotalRevenue:   1234567.5,
		RevenueOverTime: []readmodel.RevenuePoint{
			{Date: "2025-03-09", TotalRevenue: 5000},
		},
		OrdersPerProduct: []readmodel.ProductOrderCount{{Product: "Kettle", OrderCount: 3}},
	}
}

func TestOverview_Success(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/stats", http.StatusOK, overviewStats())
	c.api.Handle(http.MethodGet, "/api/orders", http.StatusOK, readmodel.OrderPage{
		Orders: []readmodel.OrderReadModel{
			{ID: "o1", OrderNumber: "ORD-001", Name: "Ada", TotalPrice: 2500, Status: readmodel.OrderShipped},
		},
		TotalPages:  1,
		CurrentPage: 1,
	})

	rec := c.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	page := body(rec)
	assert.Contains(t, page, "Welcome, admin@shop.test")
	assert.Contains(t, page, "₦1,234,567.5")
	assert.Equal(t, 3, strings.Count(page, "<canvas "))
	assert.Contains(t, page, `id="chart-orderStatus"`)
	assert.Contains(t, page, `id="chart-revenueOverTime"`)
	assert.Contains(t, page, `id="chart-ordersPerProduct"`)
	assert.Contains(t, page, `href="/orders/o1?from=overview"`)
	assert.Contains(t, page, `data-copy="ORD-001"`)
	assert.NotContains(t, page, "No recent orders.")

	var paths []string
	for _, call := range c.api.Calls() {
		paths = append(paths, call.Path)
	}
	assert.Equal(t, []string{"/api/admin/profile", "/api/admin/stats", "/api/orders"}, paths)
	assert.Equal(t, "page=1", c.api.CallsTo(http.MethodGet, "/api/orders")[0].Query)
}

func TestOverview_StatsFailureAbortsTheRest(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/stats", http.StatusInternalServerError, apitest.Error("database down"))

	rec := c.get("/")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	page := body(rec)
	assert.Contains(t, page, "database down")
	assert.Contains(t, page, "No recent orders.")
	assert.NotContains(t, page, "<canvas")
	assert.Empty(t, c.api.CallsTo(http.MethodGet, "/api/orders"))
}

func TestOverview_GreetingFallsBack(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/profile", http.StatusInternalServerError, nil)
	c.api.Handle(http.MethodGet, "/api/admin/stats", http.StatusOK, overviewStats())
	c.api.Handle(http.MethodGet, "/api/orders", http.StatusOK, readmodel.OrderPage{CurrentPage: 1})

	rec := c.get("/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body(rec), "Welcome, Admin")
}

func TestOverview_RetriesExhausted(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/stats", http.StatusTooManyRequests, nil)

	rec := c.get("/")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, body(rec), "Max retries reached for fetch request")
	assert.Len(t, c.api.CallsTo(http.MethodGet, "/api/admin/stats"), apiclient.DefaultRetryBudget)
}
