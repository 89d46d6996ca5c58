package gallery

import "context"

// ImageProvider produces image bytes for a prompt. The network client that
// talks to an image-generation API lives outside this module.
type ImageProvider interface {
	// GenerateImages returns one or more encoded images for prompt.
	GenerateImages(ctx context.Context, prompt string) ([][]byte, error)
}
