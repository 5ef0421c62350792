package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopfront/internal/viewmodel"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func validProductForm() viewmodel.ProductForm {
	return viewmodel.ProductForm{
		Name:       "Lamp",
		Count:      3,
		CategoryID: uuid.New(),
		BrandID:    uuid.New(),
	}
}

func fieldNames(errs []ValidationError) map[string]bool {
	names := map[string]bool{}
	for _, e := range errs {
		names[e.Field] = true
	}
	return names
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected by name", prop.ForAll(
		func(withName, withCategory, withBrand bool) bool {
			form := validProductForm()
			if !withName {
				form.Name = ""
			}
			if !withCategory {
				form.CategoryID = uuid.Nil
			}
			if !withBrand {
				form.BrandID = uuid.Nil
			}

			err := ValidateRequest(form)
			if withName && withCategory && withBrand {
				return err == nil
			}

			names := fieldNames(FormatValidationErrors(err))
			return names["name"] == !withName &&
				names["category_id"] == !withCategory &&
				names["brand_id"] == !withBrand
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_CountRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("negative stock is rejected", prop.ForAll(
		func(count int) bool {
			form := validProductForm()
			form.Count = count

			err := ValidateRequest(form)
			if count >= 0 {
				return err == nil
			}
			return fieldNames(FormatValidationErrors(err))["count"]
		},
		gen.IntRange(-100, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidation_LengthLimits(t *testing.T) {
	err := ValidateRequest(viewmodel.CategoryForm{Name: strings.Repeat("x", 101)})
	errs := FormatValidationErrors(err)
	if len(errs) != 1 || errs[0].Field != "name" || !strings.Contains(errs[0].Message, "100") {
		t.Errorf("Unexpected errors: %+v", errs)
	}

	if err := ValidateRequest(viewmodel.CategoryForm{Name: strings.Repeat("x", 100)}); err != nil {
		t.Errorf("Expected 100 characters to pass, got %v", err)
	}
}

func TestValidation_ZeroTimeIsMissing(t *testing.T) {
	errs := FormatValidationErrors(ValidateRequest(viewmodel.DiscountTimerForm{Title: "Sale"}))
	if !fieldNames(errs)["ends_at"] {
		t.Errorf("Expected ends_at to be required, got %+v", errs)
	}

	form := viewmodel.DiscountTimerForm{Title: "Sale", EndsAt: time.Now().Add(time.Hour)}
	if err := ValidateRequest(form); err != nil {
		t.Errorf("Expected valid timer form, got %v", err)
	}
}

func TestDecodeAndValidate(t *testing.T) {
	body, _ := json.Marshal(map[string]interface{}{"text": ""})
	req := httptest.NewRequest("POST", "/products/1/comments", bytes.NewReader(body))

	var form viewmodel.CommentForm
	err := DecodeAndValidate(req, &form)
	if !fieldNames(FormatValidationErrors(err))["text"] {
		t.Errorf("Expected text to be required, got %v", err)
	}

	req = httptest.NewRequest("POST", "/products/1/comments", strings.NewReader("{not json"))
	if err := DecodeAndValidate(req, &form); err == nil || len(FormatValidationErrors(err)) != 0 {
		t.Errorf("Expected a decode error without field errors, got %v", err)
	}
}
