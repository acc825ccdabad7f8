// Package validation turns struct-tag validation failures into a flat
// field -> code map suitable for JSON error details.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var validate = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())
	// Whitespace-only strings count as missing.
	_ = vd.RegisterValidation("notblank", validators.NotBlank)
	// Report JSON field names rather than Go field names.
	vd.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Numeric tags (gt, gte, lte) work on decimals through their float value.
	vd.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if dec, ok := v.Interface().(decimal.Decimal); ok {
			f, _ := dec.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return vd
}

// Struct validates s against its `validate` tags. It returns nil when s is valid.
func Struct(s any) Violations {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	v := Violations{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v["_"] = "invalid"
		return v
	}
	for _, fe := range verrs {
		v[fieldPath(fe)] = code(fe)
	}
	return v
}

// fieldPath strips the root struct name: "ProductInput.sale_price" -> "sale_price".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func code(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "required"
	case "gt":
		if fe.Param() == "0" {
			return "must_be_positive"
		}
		return "too_small"
	case "gte":
		if fe.Param() == "0" {
			return "must_not_be_negative"
		}
		return "too_small"
	case "min":
		return "too_small"
	case "lte", "max":
		return "too_large"
	case "oneof":
		return "invalid_choice"
	case "email":
		return "invalid_email"
	}
	return "invalid"
}
