// Package texture decodes image payloads into GPU-uploadable RGBA pixels.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	"github.com/Faultbox/yggdrasil/internal/engine/model"
)

// Decode parses PNG or JPEG bytes into a tightly packed RGBA image.
func Decode(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return ImageToRGBA(img), nil
}

// Load resolves a model image to RGBA pixels. Embedded payloads decode
// directly; external references read from disk relative to the asset file.
func Load(img model.Image, baseDir string) (*image.RGBA, error) {
	data := img.Data
	if data == nil {
		if img.URI == "" {
			return nil, fmt.Errorf("image %q has no payload and no URI", img.Name)
		}
		var err error
		data, err = os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(img.URI)))
		if err != nil {
			return nil, fmt.Errorf("image %q: %w", img.Name, err)
		}
	}
	rgba, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", img.Name, err)
	}
	return rgba, nil
}

// ImageToRGBA converts any decoded image to RGBA, copying when the source
// is not already in that layout.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
