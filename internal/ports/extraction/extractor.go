package extraction

import (
	"context"
	"errors"
)

var (
	ErrNoIdentifier = errors.New("no identifier found in image")
)

// Image es la foto del crotal (bytes + content type opcional).
type Image struct {
	Data        []byte
	ContentType string
}

// Extractor resuelve el NNI impreso en un crotal a partir de una imagen.
// Devuelve el candidato tal cual lo leyó; la validación de formato es del caller.
type Extractor interface {
	ExtractNNI(ctx context.Context, img Image) (string, error)
}

// Func adapta una función a Extractor (útil en tests y modo dev).
type Func func(ctx context.Context, img Image) (string, error)

func (f Func) ExtractNNI(ctx context.Context, img Image) (string, error) {
	return f(ctx, img)
}
