package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/ec-admin-console/internal/readmodel"
)

// Upload is an image file forwarded to the API
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProductInput is the payload for creating or updating a product. Image is
// required on create and optional on update.
type ProductInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Image       *Upload
}

func (c *Client) ListProducts(ctx context.Context) ([]readmodel.ProductReadModel, error) {
	req, _ := jsonRequest(http.MethodGet, "/api/admin/products", nil, "Failed to load products")
	var products []readmodel.ProductReadModel
	if err := c.do(ctx, req, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct loads the list and picks id out of it; the API has no
// single-product endpoint. found is false when no product has that id.
func (c *Client) GetProduct(ctx context.Context, id string) (*readmodel.ProductReadModel, bool, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], true, nil
		}
	}
	return nil, false, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) error {
	req, err := multipartRequest(http.MethodPost, "/api/admin/products", in, "Failed to add product")
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) error {
	req, err := multipartRequest(http.MethodPut, "/api/admin/products/"+id, in, "Failed to update product")
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	req, _ := jsonRequest(http.MethodDelete, "/api/admin/products/"+id, nil, "Failed to delete product")
	return c.do(ctx, req, nil)
}

func multipartRequest(method, path string, in ProductInput, fallback string) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", strings.TrimSpace(in.Name)},
		{"price", in.Price.String()},
		{"description", strings.TrimSpace(in.Description)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return request{}, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	if in.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(in.Image.Filename)))
		h.Set("Content-Type", in.Image.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(in.Image.Data); err != nil {
			return request{}, fmt.Errorf("write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("close multipart body: %w", err)
	}

	return request{
		method:      method,
		path:        path,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
		fallback:    fallback,
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
