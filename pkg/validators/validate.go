package validators

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// ShopifyDomainSuffix is the only storefront domain the connect flow accepts.
const ShopifyDomainSuffix = ".myshopify.com"

var validate *validator.Validate

func init() {
	validate = newValidator()
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("shopdomain", func(fl validator.FieldLevel) bool {
		return IsShopDomain(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})
	return v
}

// Struct validates dest against its `validate` tags and returns a CodeValidation error.
func Struct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// Var validates a single value against a tag expression.
func Var(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			msg := fmt.Sprintf("%s %s", field, validationMessage(errs[0]))
			return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]string{field: validationMessage(errs[0])})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	return nil
}

// IsShopDomain reports whether value is a bare <name>.myshopify.com hostname.
func IsShopDomain(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if !strings.HasSuffix(value, ShopifyDomainSuffix) || value == ShopifyDomainSuffix {
		return false
	}
	return validate.Var(value, "hostname_rfc1123") == nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, summarize(details)).WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func summarize(details map[string]string) string {
	fields := make([]string, 0, len(details))
	for field := range details {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, details[field]))
	}
	return strings.Join(parts, "; ")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "shopdomain":
		return "must be a " + ShopifyDomainSuffix[1:] + " domain"
	case "isodate":
		return "must be a YYYY-MM-DD date"
	}
	return "is invalid"
}
