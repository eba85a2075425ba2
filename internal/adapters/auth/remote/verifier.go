package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"livestock-registry/internal/platform/httpclient"
	"livestock-registry/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("auth service not configured")
	ErrUpstream      = errors.New("auth service upstream error")
)

// El contrato es POST /v1/tokens/verify {"token"} -> {"user_id","email","name"}.
const verifyPath = "/v1/tokens/verify"

// Verifier implementa auth.AuthVerifier contra el IAM de la organización.
type Verifier struct {
	client *httpclient.Client
}

func NewVerifier(client *httpclient.Client) *Verifier {
	return &Verifier{client: client}
}

type verifyResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || !v.client.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrUnauthorized
	}

	var out verifyResponse
	err := v.client.DoJSON(ctx, http.MethodPost, verifyPath,
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"token": token},
		&out,
	)
	switch status := httpclient.StatusCode(err); {
	case err == nil:
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return auth.Claims{}, auth.ErrUnauthorized
	default:
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	claims := auth.Claims{
		UserID: strings.TrimSpace(out.UserID),
		Email:  strings.TrimSpace(out.Email),
		Name:   strings.TrimSpace(out.Name),
	}
	if claims.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}
	return claims, nil
}
