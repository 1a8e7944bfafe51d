// Package validation checks request DTOs with go-playground/validator and reports
// failures keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps JSON field names to their failure messages.
type FieldErrors map[string][]string

// ValidationError renders through httpx.ToProblem as a 400 with code ErrValidation.
type ValidationError struct {
	summary string
	fields  FieldErrors
}

func (e *ValidationError) Error() string { return e.summary }

func (e *ValidationError) ProblemCode() string    { return "ErrValidation" }
func (e *ValidationError) ProblemStatus() int     { return http.StatusBadRequest }
func (e *ValidationError) ProblemTitle() string   { return "Validation error" }
func (e *ValidationError) ProblemDetail() string  { return e.summary }
func (e *ValidationError) ProblemTypeURI() string { return "urn:problem:validation-error" }
func (e *ValidationError) ProblemContext() any    { return map[string]any{"fields": e.fields} }

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return lowerFirst(f.Name)
	}
	return name
}

// ValidateStruct returns nil or a *ValidationError summarising every failed rule.
func ValidateStruct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{summary: "validation failed", fields: FieldErrors{}}
	}

	fields := FieldErrors{}
	var order []string
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			order = append(order, fe.Field())
		}
		fields[fe.Field()] = append(fields[fe.Field()], message(fe))
	}
	return &ValidationError{summary: summarize(fields, order, len(verrs)), fields: fields}
}

func message(fe validator.FieldError) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if text {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if text {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "len":
		if text {
			return fmt.Sprintf("must be exactly %s characters", fe.Param())
		}
		return "must have length " + fe.Param()
	case "numeric":
		return "must contain digits only"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "eqfield":
		return "must match " + lowerFirst(fe.Param())
	}
	return "is invalid"
}

// summarize leads with an invalid email when there is one, otherwise with the first
// failing field in declaration order, e.g. "invalid email, and 2 other errors".
func summarize(fields FieldErrors, order []string, total int) string {
	lead := order[0] + " " + fields[order[0]][0]
	if msgs := fields["email"]; len(msgs) > 0 && msgs[0] == "must be a valid email" {
		lead = "invalid email"
	}
	if others := total - 1; others > 0 {
		s := "s"
		if others == 1 {
			s = ""
		}
		return fmt.Sprintf("%s, and %d other error%s", lead, others, s)
	}
	return lead
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
