package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"livestock-registry/internal/platform/httpclient"
	"livestock-registry/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifier(t *testing.T, h http.HandlerFunc) *Verifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := httpclient.New(httpclient.Config{BaseURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)
	return NewVerifier(c)
}

func TestVerify_OK(t *testing.T) {
	v := newVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, verifyPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(verifyResponse{UserID: " agent-7 ", Email: "a@b.c"})
	})

	claims, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "agent-7", Email: "a@b.c"}, claims)
}

func TestVerify_Rejected(t *testing.T) {
	v := newVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := v.Verify(context.Background(), "tok")
	require.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestVerify_UpstreamAndConfig(t *testing.T) {
	v := newVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(verifyResponse{})
	})
	_, err := v.Verify(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUpstream)

	unconfigured, err := httpclient.New(httpclient.Config{})
	require.NoError(t, err)
	_, err = NewVerifier(unconfigured).Verify(context.Background(), "tok")
	require.ErrorIs(t, err, ErrNotConfigured)
}
