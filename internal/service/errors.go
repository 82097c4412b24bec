package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/tabkeeper/internal/api"
	"github.com/mmynk/tabkeeper/internal/auth"
	"github.com/mmynk/tabkeeper/internal/directory"
	"github.com/mmynk/tabkeeper/internal/settings"
	"github.com/mmynk/tabkeeper/internal/tab"
)

var (
	ErrMissingCustomer    = errors.New("customer ID is required")
	ErrNoCustomerSelected = errors.New("no customer selected")
	ErrStaleResponse      = errors.New("response arrived for a previous selection")
	ErrFetchInProgress    = errors.New("tab is still loading")
	ErrIncorrectPassword  = errors.New("Incorrect credentials")
	ErrUnknownUser        = errors.New("User does not exist")
	ErrAlreadyAdmin       = errors.New("user already has admin access")
)

// userFacing are local errors whose text is meant to be shown as is.
var userFacing = []error{
	ErrMissingCustomer,
	ErrNoCustomerSelected,
	ErrFetchInProgress,
	ErrIncorrectPassword,
	ErrUnknownUser,
	ErrAlreadyAdmin,
	tab.ErrIndexOutOfRange,
	tab.ErrInvalidStatus,
	tab.ErrInvalidPrice,
	directory.ErrNotFound,
	auth.ErrWeakPassword,
	auth.ErrShortPassword,
	auth.ErrPasswordMismatch,
	auth.ErrMissingToken,
	settings.ErrInvalidTheme,
	settings.ErrInvalidFontSize,
}

// UserMessage returns the text to display for err: the backend's message,
// the text of a local input error, or api.GenericMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var be *api.BackendError
	if errors.As(err, &be) {
		if be.Message != "" {
			return be.Message
		}
		return api.GenericMessage
	}

	var re *RejectedError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	for _, target := range userFacing {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return api.GenericMessage
}

// FieldError is one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists the invalid fields of a form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs struct validation and converts failures into a
// *ValidationError.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}
	ve := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return ve
}

// validationMessage returns a human-readable validation message.
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "eqfield":
		return "Must match " + e.Param()
	default:
		return "Invalid value"
	}
}
