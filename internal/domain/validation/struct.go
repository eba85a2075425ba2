package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"livestock-registry/internal/domain/nni"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	// mensajes de tags registrados por los dominios (ver Register)
	messages = map[string]string{}
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Rutas de error con los nombres JSON (subject.nni, mother.breed, ...)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("nni", func(fl validator.FieldLevel) bool {
		return nni.Valid(fl.Field().String())
	})

	return v
}

// Register agrega un tag sobre el valor string del campo.
// Se llama desde init() de cada dominio; no es seguro en concurrencia.
func Register(tag, msg string, fn func(string) bool) {
	_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	messages[tag] = msg
}

// Struct valida s con sus tags `validate` y agrega cada fallo bajo prefix.
func (e *Errors) Struct(prefix string, s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		e.Add(strings.TrimSuffix(prefix, "."), err.Error())
		return
	}

	for _, fe := range verrs {
		field := fieldPath(prefix, fe.Namespace())
		switch fe.Tag() {
		case "nni":
			e.AddErr(field, nni.ErrInvalidFormat)
		default:
			e.Add(field, message(fe))
		}
	}
}

// fieldPath descarta el nombre del tipo raíz ("CreateInput.subject.nni" -> "subject.nni").
func fieldPath(prefix, namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	if prefix == "" {
		return namespace
	}
	return strings.TrimSuffix(prefix, ".") + "." + namespace
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "gte", "lte":
		return fmt.Sprintf("must be %s %s", fe.Tag(), fe.Param())
	default:
		return "failed " + fe.Tag()
	}
}
