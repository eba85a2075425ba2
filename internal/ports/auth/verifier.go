package auth

import (
	"context"
	"errors"
)

var ErrUnauthorized = errors.New("unauthorized")

// AuthVerifier verifica un bearer token y devuelve los claims del agente.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
