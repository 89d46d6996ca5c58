package provider

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	// Decoders for the source formats accepted besides PNG.
	_ "image/gif"
	_ "image/jpeg"

	"paiid/internal/gallery"
)

// FileProvider "generates" images by reading existing image files, so the
// gallery can be filled from images produced by an external tool. Every
// source is re-encoded as PNG to match the entry file naming.
type FileProvider struct {
	paths []string
}

var _ gallery.ImageProvider = (*FileProvider)(nil)

// NewFileProvider creates a provider returning the images at paths, in order.
func NewFileProvider(paths ...string) *FileProvider {
	return &FileProvider{paths: paths}
}

func (p *FileProvider) GenerateImages(ctx context.Context, prompt string) ([][]byte, error) {
	if len(p.paths) == 0 {
		return nil, fmt.Errorf("no image files given")
	}

	images := make([][]byte, 0, len(p.paths))
	for _, path := range p.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := loadPNG(path)
		if err != nil {
			return nil, err
		}
		images = append(images, data)
	}
	return images, nil
}

// loadPNG returns the file at path as PNG bytes. PNG input is returned
// unchanged; other formats are decoded and re-encoded.
func loadPNG(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}
	if format == "png" {
		return data, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding %s as png: %w", path, err)
	}
	return buf.Bytes(), nil
}
