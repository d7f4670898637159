// Package convert implements the point-to-currency estimation core.
//
// The redemption rate and display locale are fixed product constants, not
// configuration. Estimates are informational only and carry no monetary
// guarantee.
package convert

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// PointsPerReal is the fixed redemption rate: points per R$ 1,00.
const PointsPerReal = 163.5

// valueScale is the number of fraction digits shown for currency values.
const valueScale = 2

// User-facing messages (pt-BR, the page's locale).
const (
	msgInvalidPoints = "Informe uma quantidade de pontos maior que zero."
)

// Result is the outcome of a single conversion. It is produced per call and
// never persisted.
type Result struct {
	OK      bool    `json:"success"`
	Value   float64 `json:"value,omitempty"`
	Message string  `json:"message"`
}

// Converter turns point quantities into formatted redemption estimates.
// It is pure: no I/O, deterministic for a given input, safe for concurrent use.
type Converter struct {
	printer *message.Printer
}

// New creates a Converter bound to the page's fixed locale.
func New() *Converter {
	return &Converter{
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

// Convert estimates the redemption value for a point quantity.
// Inputs that are not finite or not strictly positive yield OK=false with a
// user-facing message; everything else divides by the fixed rate.
func (c *Converter) Convert(points float64) Result {
	if math.IsNaN(points) || math.IsInf(points, 0) || points <= 0 {
		return Result{OK: false, Message: msgInvalidPoints}
	}

	value := points / PointsPerReal
	msg := c.printer.Sprintf("Com %v pontos você resgata aproximadamente R$ %v em produtos.",
		number.Decimal(points, number.MaxFractionDigits(valueScale)),
		number.Decimal(value, number.Scale(valueScale)),
	)
	return Result{OK: true, Value: value, Message: msg}
}

// ConvertString is the form-input front door: it parses the raw field value
// and funnels parse failures into the same invalid-input result as Convert.
// A lone decimal comma is accepted since that is how the page's locale types
// fractions.
func (c *Converter) ConvertString(raw string) Result {
	s := strings.TrimSpace(raw)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	points, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Result{OK: false, Message: msgInvalidPoints}
	}
	return c.Convert(points)
}
