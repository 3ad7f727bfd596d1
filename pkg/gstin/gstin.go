// Package gstin valida el formato del GSTIN (Goods and Services Tax Identification Number, India).
// Solo formato: no verifica el dígito de control ni la existencia ante la autoridad tributaria.
package gstin

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidFormat el GSTIN no cumple el patrón de 15 caracteres.
var ErrInvalidFormat = errors.New("gstin: formato inválido")

// 2 dígitos de estado + PAN (5 letras, 4 dígitos, 1 letra) + entidad + 'Z' + control.
var pattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[A-Z0-9]{1}[Z]{1}[A-Z0-9]{1}$`)

// Validate comprueba el formato exacto (mayúsculas, sin espacios).
func Validate(s string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return nil
}

// Normalize recorta espacios y pasa a mayúsculas antes de validar.
func Normalize(s string) (string, error) {
	n := strings.ToUpper(strings.TrimSpace(s))
	if err := Validate(n); err != nil {
		return "", err
	}
	return n, nil
}

// StateCode devuelve los dos dígitos iniciales (código de estado).
func StateCode(s string) (string, error) {
	if err := Validate(s); err != nil {
		return "", err
	}
	return s[:2], nil
}

// PAN devuelve el PAN embebido (caracteres 3 a 12).
func PAN(s string) (string, error) {
	if err := Validate(s); err != nil {
		return "", err
	}
	return s[2:12], nil
}
