package users

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/devconnector-go/apperror"
)

// registerMessages holds the client-facing message for each request field.
// A field reports a single message no matter which of its rules failed.
var registerMessages = map[string]string{
	"name":     "Name is required",
	"email":    "Please include a valid email",
	"password": "Please enter a password with 6 or more characters",
}

// RequestValidator checks request DTOs against their `validate` tags.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator that reports fields by their JSON names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// ValidateRegister returns nil or a ValidationError with one item per invalid field,
// in field order.
func (rv *RequestValidator) ValidateRegister(req *RegisterRequest) error {
	err := rv.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewInternalError("failed to validate request", err)
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := registerMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		fields = append(fields, apperror.FieldError{
			Msg:      msg,
			Param:    fe.Field(),
			Location: "body",
		})
	}
	return apperror.NewValidationError(fields)
}
