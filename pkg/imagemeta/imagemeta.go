// Package imagemeta probes image dimensions from upload bytes without
// decoding full pixel data.
package imagemeta

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// Dimensions holds probed pixel measurements.
type Dimensions struct {
	Width  int
	Height int
}

// IsImageMime reports whether the mime type belongs to the image family.
func IsImageMime(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// Probe reads the header of data and returns its dimensions. It returns
// ok=false on anything undecodable; callers treat that as "no dimensions",
// never as a failed upload.
func Probe(data []byte) (Dimensions, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, false
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, true
}
