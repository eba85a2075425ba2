package query

import (
	"strings"
	"time"
)

// MatchMode define cómo se compara un filtro de texto.
type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchContains MatchMode = "contains"
)

func ParseMatchMode(s string) MatchMode {
	if MatchMode(strings.ToLower(strings.TrimSpace(s))) == MatchContains {
		return MatchContains
	}
	return MatchExact
}

// MatchString aplica el modo sobre value. needle vacío siempre matchea.
// La comparación no distingue mayúsculas.
func MatchString(mode MatchMode, value, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	if mode == MatchContains {
		return strings.Contains(strings.ToUpper(value), strings.ToUpper(needle))
	}
	return strings.EqualFold(value, needle)
}

// InRange: rango inclusivo; límites nil no restringen.
func InRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
