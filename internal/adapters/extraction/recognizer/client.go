package recognizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"livestock-registry/internal/platform/httpclient"
	"livestock-registry/internal/ports/extraction"
)

var ErrUpstream = errors.New("recognizer upstream error")

const readPath = "/v1/tags/read"

// Client lee el NNI impreso en la foto de un crotal a través del servicio
// de reconocimiento. Lecturas por debajo de MinConfidence se descartan.
type Client struct {
	http          *httpclient.Client
	minConfidence float64
}

var _ extraction.Extractor = (*Client)(nil)

func NewClient(c *httpclient.Client, minConfidence float64) *Client {
	return &Client{http: c, minConfidence: minConfidence}
}

type readRequest struct {
	Image       []byte `json:"image"` // base64 en el JSON
	ContentType string `json:"content_type,omitempty"`
}

type readResponse struct {
	NNI        string  `json:"nni"`
	Confidence float64 `json:"confidence"`
}

func (c *Client) ExtractNNI(ctx context.Context, img extraction.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", extraction.ErrNoIdentifier
	}

	var out readResponse
	err := c.http.DoJSON(ctx, http.MethodPost, readPath, nil, readRequest{
		Image:       img.Data,
		ContentType: img.ContentType,
	}, &out)
	switch status := httpclient.StatusCode(err); {
	case err == nil:
	case status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		return "", extraction.ErrNoIdentifier
	default:
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	candidate := strings.TrimSpace(out.NNI)
	if candidate == "" {
		return "", extraction.ErrNoIdentifier
	}
	if out.Confidence < c.minConfidence {
		return "", fmt.Errorf("%w: confidence %.2f below %.2f", extraction.ErrNoIdentifier, out.Confidence, c.minConfidence)
	}
	return candidate, nil
}
