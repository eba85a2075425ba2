package query

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Page es 1-indexado. Size == 0 tras Normalize nunca ocurre; para pedir el
// conjunto completo (export) se usa All().
type Page struct {
	Number int
	Size   int

	unpaged bool
}

// All representa "sin paginar": el resultado trae todos los items filtrados.
func All() Page { return Page{unpaged: true} }

func (p Page) Unpaged() bool { return p.unpaged }

// Normalize aplica defaults y límites. Un page o size inválido no es error:
// size > MaxPageSize se recorta, y Result informa el size aplicado para que
// total_pages sea coherente con lo que recibe el caller.
func (p Page) Normalize() Page {
	if p.unpaged {
		return p
	}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset devuelve el índice del primer item de la página.
func (p Page) Offset() int {
	p = p.Normalize()
	if p.unpaged {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Result es la página devuelta junto con totales del conjunto filtrado.
type Result[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

// NewResult arma un Result a partir de la página ya recortada y el total.
func NewResult[T any](items []T, total int, p Page) Result[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	if p.unpaged {
		return Result[T]{Items: items, Total: total, TotalPages: 1, Page: 1, PageSize: total}
	}
	return Result[T]{
		Items:      items,
		Total:      total,
		TotalPages: TotalPages(total, p.Size),
		Page:       p.Number,
		PageSize:   p.Size,
	}
}

// Paginate recorta all según p. Pedir una página más allá de la última
// devuelve Items vacío (no es error).
func Paginate[T any](all []T, p Page) Result[T] {
	p = p.Normalize()
	total := len(all)
	if p.unpaged {
		out := make([]T, total)
		copy(out, all)
		return NewResult(out, total, p)
	}

	start := p.Offset()
	if start >= total {
		return NewResult([]T{}, total, p)
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, all[start:end])
	return NewResult(out, total, p)
}

func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
