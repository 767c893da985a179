package api

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/nfnt/resize"

	"github.com/example/ec-admin-console/internal/apiclient"
	"github.com/example/ec-admin-console/internal/validate"
)

const (
	// maxFormBytes bounds a product form request. It is larger than the image
	// limit so an oversized image still parses and gets the size message.
	maxFormBytes  = 2*validate.MaxImageBytes + 1<<20
	formMemory    = 1 << 20
	jpegQuality   = 85
	imageFormName = "image"
)

// parseUploadForm parses a multipart form within maxFormBytes. A body over
// the limit is reported as an oversized image.
func parseUploadForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	err := r.ParseMultipartForm(formMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &validate.Error{Field: imageFormName, Message: validate.MsgImageSize}
	}
	return fmt.Errorf("parse product form: %w", err)
}

// readImage returns the uploaded image, or nil when no file was chosen. The
// declared type and size are checked before the file is read.
func readImage(r *http.Request) (*apiclient.Upload, error) {
	file, header, err := r.FormFile(imageFormName)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := validate.Image(contentType, header.Size); err != nil {
		return nil, err
	}
	return readUpload(file, header, contentType)
}

func readUpload(file multipart.File, header *multipart.FileHeader, contentType string) (*apiclient.Upload, error) {
	data, err := io.ReadAll(io.LimitReader(file, validate.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > validate.MaxImageBytes {
		return nil, &validate.Error{Field: imageFormName, Message: validate.MsgImageSize}
	}
	return &apiclient.Upload{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

// downscale shrinks an image wider than maxWidth, keeping its aspect ratio
// and format. Images that do not decode are forwarded unchanged; the API
// has the final say on them.
func downscale(u *apiclient.Upload, maxWidth uint) (*apiclient.Upload, bool) {
	if u == nil || maxWidth == 0 {
		return u, false
	}
	img, kind, err := image.Decode(bytes.NewReader(u.Data))
	if err != nil || uint(img.Bounds().Dx()) <= maxWidth {
		return u, false
	}

	scaled := resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	switch kind {
	case "png":
		err = png.Encode(&buf, scaled)
	default:
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return u, false
	}
	out := *u
	out.Data = buf.Bytes()
	return &out, true
}
