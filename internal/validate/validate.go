// Package validate holds the superficial form checks the console performs
// before calling the API. Anything deeper is the API's job.
package validate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/ec-admin-console/internal/readmodel"
)

const (
	// MaxImageBytes is the largest product image accepted for upload
	MaxImageBytes = 5 << 20

	MsgPriceRange      = "Price must be between 0 and 1,000,000."
	MsgImageType       = "Only JPEG or PNG images are allowed."
	MsgImageSize       = "Image size must be less than 5MB."
	MsgImageRequired   = "Please choose a product image."
	MsgNameRequired    = "Product name is required."
	MsgEmailFormat     = "Invalid email format"
	MsgAccountFields   = "All account fields are required"
	MsgPasswordMissing = "Password is required"
	MsgReplyRequired   = "Reply cannot be empty"
)

var (
	maxPrice = decimal.NewFromInt(1_000_000)

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
	}
)

// Error is a validation failure for one form field
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fail(field, msg string) *Error {
	return &Error{Field: field, Message: msg}
}

// Price parses raw and checks 0 < price <= 1,000,000
func Price(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fail("price", MsgPriceRange)
	}
	if !p.IsPositive() || p.GreaterThan(maxPrice) {
		return decimal.Zero, fail("price", MsgPriceRange)
	}
	return p, nil
}

// ProductName requires a non-blank name
func ProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fail("name", MsgNameRequired)
	}
	return nil
}

// Image checks the declared content type and the size of an upload. The
// type check runs first.
func Image(contentType string, size int64) error {
	mediaType, _, _ := strings.Cut(contentType, ";")
	if !allowedImageTypes[strings.ToLower(strings.TrimSpace(mediaType))] {
		return fail("image", MsgImageType)
	}
	if size > MaxImageBytes {
		return fail("image", MsgImageSize)
	}
	return nil
}

// Email checks the loose address shape used across the console
func Email(addr string) error {
	if !emailPattern.MatchString(strings.TrimSpace(addr)) {
		return fail("email", MsgEmailFormat)
	}
	return nil
}

// Account requires every payout field after trimming
func Account(a readmodel.PayoutAccount) error {
	if strings.TrimSpace(a.AccountNumber) == "" ||
		strings.TrimSpace(a.BankName) == "" ||
		strings.TrimSpace(a.AccountName) == "" {
		return fail("account", MsgAccountFields)
	}
	return nil
}

// Login checks the login form before the credentials leave the console
func Login(email, password string) error {
	if err := Email(email); err != nil {
		return err
	}
	if password == "" {
		return fail("password", MsgPasswordMissing)
	}
	return nil
}

// Reply requires a non-blank reply body
func Reply(body string) error {
	if strings.TrimSpace(body) == "" {
		return fail("reply", MsgReplyRequired)
	}
	return nil
}
