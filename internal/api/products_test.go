package api

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-admin-console/internal/apiclient/apitest"
	"github.com/example/ec-admin-console/internal/audit"
	"github.com/example/ec-admin-console/internal/readmodel"
	"github.com/example/ec-admin-console/internal/validate"
)

const fileInput = `<input type="file" name="image" accept="image/jpeg,image/png" required>`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func catalog() []readmodel.ProductReadModel {
	return []readmodel.ProductReadModel{
		{ID: "p1", Name: "Steel Kettle", Price: 12500.5, Image: "/uploads/kettle.png"},
		{ID: "p2", Name: "Coffee Mug", Price: 1500},
	}
}

func TestProducts_ListAndFilter(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/products", http.StatusOK, catalog())

	page := body(c.get("/products?q=KETTLE"))

	assert.Contains(t, page, "Steel Kettle")
	assert.Contains(t, page, "₦12,500.5")
	assert.Contains(t, page, c.api.URL+"/uploads/kettle.png")
	assert.NotContains(t, page, "Coffee Mug")
	assert.Len(t, c.api.CallsTo(http.MethodGet, "/api/admin/products"), 1)
}

func TestProducts_EmptyState(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/products", http.StatusOK, catalog())

	assert.Contains(t, body(c.get("/products?q=blender")), "No products found.")
}

func TestCreateProduct_InvalidPriceMakesNoCall(t *testing.T) {
	c := newConsole(t)
	c.login()

	rec := c.postMultipart("/products", map[string]string{"name": "Kettle", "price": "-5"},
		&filePart{name: "k.png", contentType: "image/png", data: pngBytes(t, 4, 4)})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	page := body(rec)
	assert.Contains(t, page, validate.MsgPriceRange)
	assert.Contains(t, page, `value="Kettle"`)
	assert.Empty(t, c.api.CallsTo(http.MethodPost, "/api/admin/products"))
	assert.Empty(t, c.audit.Events())
}

func TestCreateProduct_OversizedImageMakesNoCall(t *testing.T) {
	c := newConsole(t)
	c.login()

	big := make([]byte, 6<<20)
	rec := c.postMultipart("/products", map[string]string{"name": "Kettle", "price": "100"},
		&filePart{name: "big.jpg", contentType: "image/jpeg", data: big})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	page := body(rec)
	assert.Contains(t, page, validate.MsgImageSize)
	assert.Contains(t, page, fileInput, "file input is rendered empty")
	assert.Empty(t, c.api.CallsTo(http.MethodPost, "/api/admin/products"))
}

func TestCreateProduct_RejectsImageType(t *testing.T) {
	c := newConsole(t)
	c.login()

	rec := c.postMultipart("/products", map[string]string{"name": "Kettle", "price": "100"},
		&filePart{name: "k.gif", contentType: "image/gif", data: []byte("GIF89a")})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body(rec), validate.MsgImageType)
	assert.Empty(t, c.api.CallsTo(http.MethodPost, "/api/admin/products"))
}

func TestCreateProduct_RequiresImage(t *testing.T) {
	c := newConsole(t)
	c.login()

	rec := c.postMultipart("/products", map[string]string{"name": "Kettle", "price": "100"}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body(rec), validate.MsgImageRequired)
	assert.Empty(t, c.api.CallsTo(http.MethodPost, "/api/admin/products"))
}

func TestCreateProduct_Success(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodPost, "/api/admin/products", http.StatusCreated, map[string]string{"_id": "p9"})
	c.api.Handle(http.MethodGet, "/api/admin/products", http.StatusOK, catalog())

	rec := c.postMultipart("/products", map[string]string{"name": "Kettle", "price": "999999.99", "description": "Steel"},
		&filePart{name: "k.png", contentType: "image/png", data: pngBytes(t, 4, 4)})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get("Location"))
	calls := c.api.CallsTo(http.MethodPost, "/api/admin/products")
	require.Len(t, calls, 1)
	assert.Contains(t, string(calls[0].Body), "999999.99")
	assert.Equal(t, []string{audit.ProductCreated}, c.audit.Types())

	list := c.follow(rec)
	assert.Contains(t, body(list), "Product added successfully!")
}

func TestCreateProduct_APIErrorKeepsForm(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodPost, "/api/admin/products", http.StatusBadRequest, apitest.Error("Product already exists"))

	rec := c.postMultipart("/products", map[string]string{"name": "Kettle", "price": "100"},
		&filePart{name: "k.png", contentType: "image/png", data: pngBytes(t, 4, 4)})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	page := body(rec)
	assert.Contains(t, page, "Product already exists")
	assert.Contains(t, page, `value="Kettle"`)
	assert.Contains(t, page, fileInput)
	assert.Empty(t, c.audit.Events())
}

func TestEditProduct_LoadsFromList(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/products", http.StatusOK, catalog())

	rec := c.get("/products/p1/edit")

	assert.Equal(t, http.StatusOK, rec.Code)
	page := body(rec)
	assert.Contains(t, page, `value="Steel Kettle"`)
	assert.Contains(t, page, `value="12500.5"`)
	assert.Contains(t, page, `action="/products/p1"`)
}

func TestEditProduct_NotFound(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/products", http.StatusOK, catalog())

	rec := c.get("/products/missing/edit")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, body(rec), "Product not found.")
}

func TestUpdateProduct_ImageOptional(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodPut, "/api/admin/products/p1", http.StatusOK, nil)

	rec := c.postMultipart("/products/p1", map[string]string{"name": "Kettle", "price": "150"}, nil)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	calls := c.api.CallsTo(http.MethodPut, "/api/admin/products/p1")
	require.Len(t, calls, 1)
	assert.NotContains(t, string(calls[0].Body), `name="image"`)
	assert.Equal(t, []string{audit.ProductUpdated}, c.audit.Types())
}

func TestDeleteProduct_RequiresConfirmation(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodDelete, "/api/admin/products/p1", http.StatusOK, nil)

	rec := c.post("/products/p1/delete", url.Values{"name": {"Steel Kettle"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body(rec), "Steel Kettle")
	assert.Empty(t, c.api.CallsTo(http.MethodDelete, "/api/admin/products/p1"))

	rec = c.post("/products/p1/delete", url.Values{"confirm": {"yes"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, c.api.CallsTo(http.MethodDelete, "/api/admin/products/p1"), 1)
	assert.Equal(t, []string{audit.ProductDeleted}, c.audit.Types())
}

func TestConfirmDeleteProduct_ShowsName(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.api.Handle(http.MethodGet, "/api/admin/products", http.StatusOK, catalog())

	page := body(c.get("/products/p2/delete"))

	assert.Contains(t, page, "Coffee Mug")
	assert.Contains(t, page, `name="confirm" value="yes"`)
}
