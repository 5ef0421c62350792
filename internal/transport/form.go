package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopfront/internal/middleware"
	"shopfront/internal/upload"
	"shopfront/internal/viewmodel"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// maxFormMemory bounds the multipart parts kept in memory; larger files
// spill to temporary files.
const maxFormMemory = 8 << 20

var (
	errInvalidBody  = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
)

// bodyError reports a read cut short by the body size limit as
// errBodyTooLarge.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit %d bytes", errBodyTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", errInvalidBody, err)
}

// formReader reads typed fields from a submitted form and collects the
// fields that could not be parsed.
type formReader struct {
	values url.Values
	files  []upload.ImageFile
	errs   []middleware.ValidationError
}

// readForm accepts multipart, urlencoded and JSON bodies. JSON objects are
// flattened to strings so every encoding goes through the same parsers.
func readForm(r *http.Request) (*formReader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var body map[string]interface{}
		decoder := json.NewDecoder(r.Body)
		decoder.UseNumber()
		if err := decoder.Decode(&body); err != nil {
			return nil, bodyError(err)
		}
		values := url.Values{}
		for key, raw := range body {
			if raw == nil {
				continue
			}
			value, err := cast.ToStringE(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: field %s: %v", errInvalidBody, key, err)
			}
			values.Set(key, value)
		}
		return &formReader{values: values}, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, bodyError(err)
		}
		f := &formReader{values: url.Values(r.MultipartForm.Value)}
		for _, fh := range r.MultipartForm.File[upload.ImageFieldName] {
			f.files = append(f.files, upload.FromFileHeader(fh))
		}
		return f, nil

	default:
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		return &formReader{values: r.PostForm}, nil
	}
}

func (f *formReader) fail(field, message string) {
	f.errs = append(f.errs, middleware.ValidationError{Field: field, Message: message})
}

func (f *formReader) str(field string) string {
	return strings.TrimSpace(f.values.Get(field))
}

func (f *formReader) integer(field string) int {
	raw := f.str(field)
	if raw == "" {
		return 0
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		f.fail(field, "Value must be a whole number")
	}
	return n
}

// boolean treats a present checkbox ("on") as true.
func (f *formReader) boolean(field string) bool {
	raw := f.str(field)
	if raw == "" {
		return false
	}
	if strings.EqualFold(raw, "on") {
		return true
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		f.fail(field, "Value must be true or false")
	}
	return b
}

func (f *formReader) amount(field string) decimal.Decimal {
	raw := f.str(field)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		f.fail(field, "Value must be a number")
	}
	return d
}

func (f *formReader) id(field string) uuid.UUID {
	raw := f.str(field)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		f.fail(field, "Invalid identifier")
	}
	return id
}

// timestamp parses any common date layout; values without a zone are UTC.
func (f *formReader) timestamp(field string) time.Time {
	raw := f.str(field)
	if raw == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		f.fail(field, "Invalid date")
	}
	return t
}

func (f *formReader) productForm() viewmodel.ProductForm {
	return viewmodel.ProductForm{
		Name:          f.str("name"),
		Description:   f.str("description"),
		Information:   f.str("information"),
		Price:         f.amount("price"),
		DiscountPrice: f.amount("discount_price"),
		Count:         f.integer("count"),
		IsDiscount:    f.boolean("is_discount"),
		CategoryID:    f.id("category_id"),
		BrandID:       f.id("brand_id"),
	}
}

func (f *formReader) discountTimerForm() viewmodel.DiscountTimerForm {
	return viewmodel.DiscountTimerForm{
		Title:  f.str("title"),
		EndsAt: f.timestamp("ends_at"),
	}
}

func (f *formReader) commentForm() viewmodel.CommentForm {
	return viewmodel.CommentForm{Text: f.str("text")}
}

// check runs the struct tag rules on form and returns them together with
// any parse failures, parse failures first.
func (f *formReader) check(form interface{}) []middleware.ValidationError {
	errs := append([]middleware.ValidationError(nil), f.errs...)
	seen := make(map[string]bool, len(errs))
	for _, e := range errs {
		seen[e.Field] = true
	}
	for _, e := range middleware.FormatValidationErrors(middleware.ValidateRequest(form)) {
		if !seen[e.Field] {
			errs = append(errs, e)
		}
	}
	return errs
}
