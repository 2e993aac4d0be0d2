package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"workpulse/pkg/contracts/domain"
)

// FieldError describes one failed constraint, keyed by the JSON field path
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned by Struct when one or more constraints fail
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Validator wraps validator/v10 with the rules used by request DTOs
type Validator struct {
	validate *validator.Validate
}

// New creates a validator that reports JSON field names and knows the
// employment_type and finite rules.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("employment_type", isEmploymentType)
	_ = v.RegisterValidation("finite", isFinite)

	return &Validator{validate: v}
}

// Struct validates s. Constraint failures come back as Errors; anything
// else (a nil or non-struct argument) is returned as is.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
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
			Field:   fieldPath(fe),
			Message: formatMessage(fe),
		})
	}
	return out
}

// fieldPath drops the top-level struct name: "ExportRequest.data[3].leave_days"
// becomes "data[3].leave_days".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatMessage(fe validator.FieldError) string {
	field := fieldPath(fe)
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at least %s items or characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must have at most %s items or characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "employment_type":
		return fmt.Sprintf("%s must be %s or %s", field, domain.EmploymentFullTime, domain.EmploymentPartTime)
	case "finite":
		return fmt.Sprintf("%s must be a finite number", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func isEmploymentType(fl validator.FieldLevel) bool {
	return domain.EmploymentType(fl.Field().String()).Valid()
}

func isFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}
