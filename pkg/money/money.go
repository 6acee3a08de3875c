// Package money interpreta y formatea valores monetarios en reales (BRL).
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Format convención de separadores para strings monetarios.
type Format string

const (
	// FormatBR "R$ 1.234,56": punto de miles, coma decimal (exportación típica del ERP).
	FormatBR Format = "pt-BR"
	// FormatNeutral "1,234.56": coma de miles, punto decimal.
	FormatNeutral Format = "neutral"
	// FormatAuto el separador más a la derecha es el decimal.
	FormatAuto Format = "auto"
)

// ErrEmpty el string no contiene ningún valor.
var ErrEmpty = errors.New("money: valor vacío")

// ParseFormat valida el nombre de un formato.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimSpace(s)); f {
	case FormatBR, FormatNeutral, FormatAuto:
		return f, nil
	case "":
		return FormatBR, nil
	default:
		return "", fmt.Errorf("money: formato desconocido %q", s)
	}
}

// Parse convierte un string monetario en decimal según el formato indicado.
// Acepta prefijo "R$", espacios (incluido NBSP) y signo negativo o paréntesis contables.
func Parse(s string, f Format) (decimal.Decimal, error) {
	clean := strings.NewReplacer("R$", "", "r$", "", " ", "", "\u00a0", "", "\t", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, ErrEmpty
	}
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}

	switch f {
	case FormatNeutral:
		clean = strings.ReplaceAll(clean, ",", "")
	case FormatAuto:
		clean = normalizeAuto(clean)
	default:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: valor inválido %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// normalizeAuto deja sólo el separador más a la derecha como punto decimal.
func normalizeAuto(s string) string {
	last := strings.LastIndexAny(s, ".,")
	if last == -1 {
		return s
	}
	intPart := strings.NewReplacer(".", "", ",", "").Replace(s[:last])
	frac := s[last+1:]
	// "1.234" o "1,234" con exactamente 3 dígitos y un único separador: miles, no decimal.
	if len(frac) == 3 && strings.Count(s, string(s[last])) == 1 && strings.IndexAny(s[:last], ".,") == -1 && len(intPart) > 0 {
		return intPart + frac
	}
	return intPart + "." + frac
}

// FormatBRL formatea un decimal como "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	return "R$ " + sign + groupThousands(intPart) + "," + frac
}

// groupThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
