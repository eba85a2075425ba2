package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"livestock-registry/internal/platform/httpclient"
	"livestock-registry/internal/ports/directory"
)

var ErrUpstream = errors.New("directory upstream error")

// Client consulta el directorio administrativo:
// GET /v1/{breeders|holdings|local-agents}/{id} -> 200 existe, 404 no existe.
type Client struct {
	http *httpclient.Client
}

var _ directory.Directory = (*Client)(nil)

func NewClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

var collections = map[directory.Kind]string{
	directory.KindBreeder:    "breeders",
	directory.KindHolding:    "holdings",
	directory.KindLocalAgent: "local-agents",
}

func (c *Client) Exists(ctx context.Context, kind directory.Kind, id string) (bool, error) {
	coll, ok := collections[kind]
	if !ok {
		return false, fmt.Errorf("unknown directory kind %q", kind)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}

	err := c.http.DoJSON(ctx, http.MethodGet, "/v1/"+coll+"/"+url.PathEscape(id), nil, nil, nil)
	switch {
	case err == nil:
		return true, nil
	case httpclient.StatusCode(err) == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}
