package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/ec-admin-console/internal/apiclient"
	"github.com/example/ec-admin-console/internal/audit"
	"github.com/example/ec-admin-console/internal/query"
	"github.com/example/ec-admin-console/internal/readmodel"
	"github.com/example/ec-admin-console/internal/validate"
	"github.com/example/ec-admin-console/internal/view"
)

const confirmValue = "yes"

type productCard struct {
	ID          string
	Name        string
	Description string
	Price       float64
	ImageURL    string
}

type productsData struct {
	Query    string
	Products []productCard
}

type productFormData struct {
	ID          string
	Name        string
	Price       string
	Description string
	ImageURL    string
	Editing     bool
}

func (d productFormData) Action() string {
	if d.Editing {
		return "/products/" + d.ID
	}
	return "/products"
}

type productDeleteData struct {
	ID   string
	Name string
}

var errProductNotFound = &apiclient.APIError{Status: http.StatusNotFound, Message: "Product not found."}

func (h *Handlers) card(p readmodel.ProductReadModel) productCard {
	return productCard{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    h.client.AssetURL(p.Image),
	}
}

// Products lists every product, narrowed by the q name filter
func (h *Handlers) Products(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Products", "products")
	if !ok {
		return
	}
	data := productsData{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	p.Data = &data

	products, err := h.client.ListProducts(r.Context())
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "list products", err)
		p.Status = view.Failed(userMessage(err))
		h.render(w, r, httpStatus(err), "products.html", p)
		return
	}

	for _, prod := range query.FilterProducts(products, data.Query) {
		data.Products = append(data.Products, h.card(prod))
	}
	h.render(w, r, http.StatusOK, "products.html", p)
}

func (h *Handlers) NewProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Add Product", "products")
	if !ok {
		return
	}
	p.Data = productFormData{}
	h.render(w, r, http.StatusOK, "product_form.html", p)
}

func (h *Handlers) EditProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Edit Product", "products")
	if !ok {
		return
	}
	id := pathID(r)
	form := productFormData{ID: id, Editing: true}
	p.Data = &form

	prod, found, err := h.client.GetProduct(r.Context(), id)
	if err == nil && !found {
		err = errProductNotFound
	}
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "load product", err)
		p.Status = view.Failed(userMessage(err))
		h.render(w, r, httpStatus(err), "product_form.html", p)
		return
	}

	form.Name = prod.Name
	form.Price = strconv.FormatFloat(prod.Price, 'f', -1, 64)
	form.Description = prod.Description
	form.ImageURL = h.client.AssetURL(prod.Image)
	h.render(w, r, http.StatusOK, "product_form.html", p)
}

// CreateProduct validates the form and forwards it as multipart. Nothing is
// sent when validation fails.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, "")
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, pathID(r))
}

func (h *Handlers) saveProduct(w http.ResponseWriter, r *http.Request, id string) {
	editing := id != ""
	form := productFormData{ID: id, Editing: editing}

	in, err := h.readProductForm(w, r, &form)
	if err == nil {
		action, eventType, target, done := "product.create", audit.ProductCreated, in.Name, "Product added successfully!"
		if editing {
			action, eventType, target, done = "product.update", audit.ProductUpdated, id, "Product updated successfully!"
		}
		err = h.mutate(r.Context(), action, target, productPayload(in), func(ctx context.Context) error {
			if editing {
				return h.client.UpdateProduct(ctx, id, in)
			}
			return h.client.CreateProduct(ctx, in)
		})
		if err == nil {
			h.record(r.Context(), eventType, target, map[string]string{"name": in.Name, "price": in.Price.String()})
			h.flash(w, r, view.FlashSuccess, done)
			h.redirect(w, r, "/products")
			return
		}
		if h.evictOn401(w, r, err) {
			return
		}
	}
	h.logFailure(r, "save product", err)

	title := "Add Product"
	if editing {
		title = "Edit Product"
	}
	p, ok := h.newPage(w, r, title, "products")
	if !ok {
		return
	}
	p.Data = form
	p.Status = view.Failed(userMessage(err))
	h.render(w, r, httpStatus(err), "product_form.html", p)
}

// productPayload lists the submitted values that make two product saves the
// same submission
func productPayload(in apiclient.ProductInput) []string {
	payload := []string{in.Name, in.Price.String(), in.Description}
	if in.Image != nil {
		payload = append(payload, in.Image.Filename, in.Image.ContentType, string(in.Image.Data))
	}
	return payload
}

// readProductForm fills form with the submitted text fields, so a rejected
// form is re-rendered with them, and returns the validated input. The file
// input is never echoed back.
func (h *Handlers) readProductForm(w http.ResponseWriter, r *http.Request, form *productFormData) (apiclient.ProductInput, error) {
	if err := parseUploadForm(w, r); err != nil {
		return apiclient.ProductInput{}, err
	}
	form.Name = strings.TrimSpace(r.FormValue("name"))
	form.Price = strings.TrimSpace(r.FormValue("price"))
	form.Description = strings.TrimSpace(r.FormValue("description"))
	form.ImageURL = strings.TrimSpace(r.FormValue("currentImage"))

	if err := validate.ProductName(form.Name); err != nil {
		return apiclient.ProductInput{}, err
	}
	price, err := validate.Price(form.Price)
	if err != nil {
		return apiclient.ProductInput{}, err
	}
	img, err := readImage(r)
	if err != nil {
		return apiclient.ProductInput{}, err
	}
	if img == nil && !form.Editing {
		return apiclient.ProductInput{}, &validate.Error{Field: imageFormName, Message: validate.MsgImageRequired}
	}
	if scaled, changed := downscale(img, h.uploadMaxWidth); changed {
		h.logger.DebugContext(r.Context(), "downscaled product image",
			"from_bytes", len(img.Data), "to_bytes", len(scaled.Data), "max_width", h.uploadMaxWidth)
		img = scaled
	}

	return apiclient.ProductInput{
		Name:        form.Name,
		Price:       price,
		Description: form.Description,
		Image:       img,
	}, nil
}

// ConfirmDeleteProduct asks before a product is deleted
func (h *Handlers) ConfirmDeleteProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.newPage(w, r, "Delete Product", "products")
	if !ok {
		return
	}
	id := pathID(r)
	data := productDeleteData{ID: id}
	p.Data = &data

	prod, found, err := h.client.GetProduct(r.Context(), id)
	if err == nil && !found {
		err = errProductNotFound
	}
	if err != nil {
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "load product", err)
		p.Status = view.Failed(userMessage(err))
		h.render(w, r, httpStatus(err), "product_delete.html", p)
		return
	}
	data.Name = prod.Name
	h.render(w, r, http.StatusOK, "product_delete.html", p)
}

// DeleteProduct deletes only when the confirmation was given; otherwise
// the confirmation is shown again.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	data := productDeleteData{ID: id, Name: strings.TrimSpace(r.FormValue("name"))}

	var err error
	if r.FormValue("confirm") == confirmValue {
		err = h.mutate(r.Context(), "product.delete", id, nil, func(ctx context.Context) error {
			return h.client.DeleteProduct(ctx, id)
		})
		if err == nil {
			h.record(r.Context(), audit.ProductDeleted, id, nil)
			h.flash(w, r, view.FlashSuccess, "Product deleted successfully!")
			h.redirect(w, r, "/products")
			return
		}
		if h.evictOn401(w, r, err) {
			return
		}
		h.logFailure(r, "delete product", err)
	}

	p, ok := h.newPage(w, r, "Delete Product", "products")
	if !ok {
		return
	}
	p.Data = &data
	status := http.StatusOK
	if err != nil {
		p.Status = view.Failed(userMessage(err))
		status = httpStatus(err)
	}
	h.render(w, r, status, "product_delete.html", p)
}
