package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("validation failed")

// FieldError mirrors one failed rule the way forms render it back.
type FieldError struct {
	Field   string `json:"param"`
	Message string `json:"msg"`
	Value   any    `json:"value"`
}

type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ErrInvalid.Error()
	}
	return e[0].Message
}

func (e Errors) Is(target error) bool { return target == ErrInvalid }

// First is the message shown at the top of a re-rendered form.
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

// Has reports whether field failed any rule.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("price", validatePrice)
	return &Validator{v: v}
}

var std = New()

// Struct validates with the package default validator.
func Struct(i any) error { return std.Validate(i) }

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: messageFor(i, fe),
			Value:   fe.Value(),
		})
	}
	return out
}

func messageFor(i any, fe validator.FieldError) string {
	t := reflect.TypeOf(i)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if msg := f.Tag.Get("msg"); msg != "" {
				return msg
			}
		}
	}
	return "Invalid value for " + fe.Field() + "."
}

func validatePrice(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return !d.IsNegative()
}
