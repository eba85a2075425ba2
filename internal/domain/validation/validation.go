package validation

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Error agrupa todos los fallos de validación de una operación.
// Fields mapea ruta del campo (ej: "subject.nni") -> mensaje.
// errors.Is(err, ErrInvalidInput) siempre es true; además expone las causas
// tipadas (nni.ErrInvalidFormat, etc.) para que el caller las distinga.
type Error struct {
	Fields map[string]string
	causes []error
}

func (e *Error) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, len(e.causes)+1)
	out = append(out, ErrInvalidInput)
	out = append(out, e.causes...)
	return out
}

// Errors acumula fallos en una sola pasada (no corta en el primero).
type Errors struct {
	fields map[string]string
	causes []error
}

func (e *Errors) Add(field, msg string) {
	if e.fields == nil {
		e.fields = map[string]string{}
	}
	// el primer mensaje por campo gana
	if _, ok := e.fields[field]; ok {
		return
	}
	e.fields[field] = msg
}

// AddErr registra err como mensaje del campo y lo conserva como causa.
func (e *Errors) AddErr(field string, err error) {
	if err == nil {
		return
	}
	e.Add(field, err.Error())
	e.addCause(err)
}

func (e *Errors) addCause(err error) {
	for _, c := range e.causes {
		if c == err {
			return
		}
	}
	e.causes = append(e.causes, err)
}

func (e *Errors) Has(field string) bool {
	_, ok := e.fields[field]
	return ok
}

func (e *Errors) Empty() bool { return len(e.fields) == 0 }

// Err devuelve nil si no hubo fallos, o un *Error con todos los campos.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	fields := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		fields[k] = v
	}
	causes := make([]error, len(e.causes))
	copy(causes, e.causes)
	return &Error{Fields: fields, causes: causes}
}

// FieldErrors extrae el mapa campo->mensaje si err es (o envuelve) un *Error.
func FieldErrors(err error) (map[string]string, bool) {
	var ve *Error
	if !errors.As(err, &ve) {
		return nil, false
	}
	return ve.Fields, true
}

// ErrFutureDate: la fecha es posterior a "ahora" donde solo se admite pasado/presente.
var ErrFutureDate = errors.New("must not be in the future")
