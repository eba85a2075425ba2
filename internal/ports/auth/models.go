package auth

// Claims identifica al agente autenticado. UserID se registra como created_by
// y como agente por defecto de un re-crotalado.
type Claims struct {
	UserID string
	Email  string
	Name   string
}
