package directory

import "context"

// Kind es el tipo de entidad administrativa.
type Kind string

const (
	KindBreeder    Kind = "breeder"
	KindHolding    Kind = "holding"
	KindLocalAgent Kind = "local_agent"
)

// Directory consulta el directorio administrativo externo (criadores,
// explotaciones, agentes). El registro guarda las refs pero no es dueño de ellas.
type Directory interface {
	Exists(ctx context.Context, kind Kind, id string) (bool, error)
}
