package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	ErrRequired    = "is required"
	ErrMinValue    = "must be at least %s"
	ErrMaxValue    = "must be at most %s"
	ErrMinLength   = "must be at least %s characters long"
	ErrMaxLength   = "must be at most %s characters long"
	ErrMinItems    = "must contain at least %s item(s)"
	ErrUniqueItems = "must not contain duplicates"
	ErrSeatLabel   = "must be a seat label such as A1 or B12"
	ErrCurrency    = "must be an ISO 4217 currency code"
	ErrAfterField  = "must be after %s"
	ErrInvalid     = "is invalid"
)

var seatLabelRgx = regexp.MustCompile(`^[A-Za-z]{1,3}-?[0-9]{1,4}$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterTagNameFunc(jsonFieldName)
	validator.RegisterValidation("seat_label", validateSeatLabel)

	// decimals are compared as floats so numeric tags such as gte apply
	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	return validator
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

func validateSeatLabel(fl validator.FieldLevel) bool {
	return seatLabelRgx.MatchString(fl.Field().String())
}

func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}

	f, _ := d.Float64()

	return f
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "min":
		switch err.Kind() {
		case reflect.String:
			return fmt.Sprintf(ErrMinLength, err.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf(ErrMinItems, err.Param())
		}
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf(ErrMaxLength, err.Param())
		}
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "gte":
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "lte":
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "unique":
		return ErrUniqueItems
	case "seat_label":
		return ErrSeatLabel
	case "iso4217":
		return ErrCurrency
	case "gtfield":
		return fmt.Sprintf(ErrAfterField, err.Param())
	default:
		return ErrInvalid
	}
}
