// Package respond reúne los helpers de respuesta HTTP.
// Antes writeJSON vivía duplicado en cada handler; con tres módulos ya
// conviene tenerlo en un solo lugar.
package respond

import (
	"encoding/json"
	"net/http"

	"livestock-registry/internal/domain/validation"
)

// ErrorBody es el cuerpo de todos los errores de la API.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error escribe {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// Validation escribe 400 con el mapa campo->mensaje si err lo trae.
func Validation(w http.ResponseWriter, err error) {
	fields, _ := validation.FieldErrors(err)
	JSON(w, http.StatusBadRequest, ErrorBody{
		Error:  "validation failed",
		Fields: fields,
	})
}

// Fields escribe un status arbitrario con un mapa de campos.
func Fields(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	JSON(w, status, ErrorBody{Error: msg, Fields: fields})
}
