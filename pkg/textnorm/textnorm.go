// Package textnorm normaliza textos de planillas: comparación de encabezados sin
// acentos ni mayúsculas y decodificación de exportaciones en Windows-1252.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold devuelve s en minúsculas, sin diacríticos y con espacios colapsados.
// "Funcionários  PDF" → "funcionarios pdf".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// EqualFold compara dos encabezados ignorando acentos, mayúsculas y espacios extra.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// ToUTF8 devuelve b como UTF-8. Si no es UTF-8 válido se asume Windows-1252,
// el charset habitual de los CSV exportados por ERPs en Brasil.
func ToUTF8(b []byte) ([]byte, error) {
	b = trimBOM(b)
	if utf8.Valid(b) {
		return b, nil
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), b)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
