package nni

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidFormat = errors.New("invalid nni format")
)

// Dos letras de país + 10 dígitos de serie (ej: FR1234567890).
var pattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{10}$`)

// NNI es un identificador nacional ya normalizado.
type NNI string

// Normalize recorta espacios, pasa a mayúsculas y valida el formato.
// No tiene efectos secundarios: si falla, el caller no debe escribir nada.
func Normalize(raw string) (NNI, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if !pattern.MatchString(v) {
		return "", ErrInvalidFormat
	}
	return NNI(v), nil
}

// Valid reporta si raw, una vez normalizado, es un NNI aceptable.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

func (n NNI) String() string { return string(n) }

// Country devuelve el prefijo de país (vacío si n no está normalizado).
func (n NNI) Country() string {
	if len(n) != 12 {
		return ""
	}
	return string(n[:2])
}

// Serial devuelve los 10 dígitos de serie.
func (n NNI) Serial() string {
	if len(n) != 12 {
		return ""
	}
	return string(n[2:])
}
