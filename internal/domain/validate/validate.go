// Package validate implements per-field validation for the contact form.
//
// Rules are checked in a fixed precedence order and the first failing rule
// wins: required presence, then email shape, then minimum length. Messages
// are user-facing pt-BR strings; rule names feed metrics.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// FieldType enumerates the supported field kinds.
type FieldType string

// Supported field types.
const (
	TypeText  FieldType = "text"
	TypeEmail FieldType = "email"
)

// Rule names, reported alongside failures.
const (
	RuleRequired  = "required"
	RuleEmail     = "email"
	RuleMinLength = "min_length"
)

// User-facing messages (pt-BR, the page's locale).
const (
	msgRequired  = "Este campo é obrigatório."
	msgEmail     = "Informe um e-mail válido."
	msgMinLength = "Digite pelo menos %d caracteres."
)

// Field carries a form field's current value and its constraints.
type Field struct {
	Name      string
	Value     string
	Required  bool
	Type      FieldType
	MinLength int
}

// Result is the verdict for a single field check. Message is empty when the
// field is valid. Rule names the first rule that failed.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Rule    string `json:"-"`
}

// FieldError is the wire shape for reporting one failed field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Checker validates fields. Email well-formedness is delegated to the
// validator library's email rule rather than a hand-rolled pattern.
type Checker struct {
	validate *validator.Validate
}

// NewChecker creates a Checker.
func NewChecker() *Checker {
	return &Checker{
		validate: validator.New(),
	}
}

// Check applies the field's constraints in precedence order and returns the
// verdict for the first failing rule, or a valid result with no message.
func (c *Checker) Check(f Field) Result {
	if f.Required && strings.TrimSpace(f.Value) == "" {
		return Result{Valid: false, Message: msgRequired, Rule: RuleRequired}
	}
	if f.Type == TypeEmail && f.Value != "" {
		if err := c.validate.Var(f.Value, "email"); err != nil {
			return Result{Valid: false, Message: msgEmail, Rule: RuleEmail}
		}
	}
	if f.MinLength > 0 && utf8.RuneCountInString(f.Value) < f.MinLength {
		return Result{
			Valid:   false,
			Message: fmt.Sprintf(msgMinLength, f.MinLength),
			Rule:    RuleMinLength,
		}
	}
	return Result{Valid: true}
}

// CheckAll validates fields independently; one field's failure never blocks
// another's check. The returned slice is nil when every field passes.
func (c *Checker) CheckAll(fields []Field) []FieldError {
	var errs []FieldError
	for _, f := range fields {
		if res := c.Check(f); !res.Valid {
			errs = append(errs, FieldError{Field: f.Name, Message: res.Message})
		}
	}
	return errs
}
