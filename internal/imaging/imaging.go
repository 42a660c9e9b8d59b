// Package imaging normalises uploaded item photos.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// Photo limits.
const (
	MaxUploadBytes = 10 << 20
	MaxDimension   = 1024
	JPEGQuality    = 85
)

var (
	ErrTooLarge    = errors.New("image is too large")
	ErrUnsupported = errors.New("unsupported image format")
)

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is an encoded item photo.
type Photo struct {
	Data []byte
	MIME string
}

// Process reads at most MaxUploadBytes, checks the content is a JPEG or PNG,
// fits it inside MaxDimension and re-encodes it as JPEG.
func Process(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	if mime := http.DetectContentType(data); !accepted[mime] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, MaxDimension), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// fit scales img down so its longer side is at most limit, keeping the
// aspect ratio. Smaller images are returned as is.
func fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	if w >= h {
		h = max(h*limit/w, 1)
		w = limit
	} else {
		w = max(w*limit/h, 1)
		h = limit
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
