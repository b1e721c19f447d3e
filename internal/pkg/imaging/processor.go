package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// ProcessedCover is a normalized, PNG-encoded cover image ready for storage.
type ProcessedCover struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Config for cover processing
type Config struct {
	MaxWidth  int // max output width (default 1290)
	MaxHeight int // max output height (default 1720)
	MinWidth  int // reject tiny uploads (default 300)
	MinHeight int
}

// DefaultConfig returns default processing config.
// 1290x1720 is the 3:4 export size the web client renders at.
func DefaultConfig() Config {
	return Config{
		MaxWidth:  1290,
		MaxHeight: 1720,
		MinWidth:  300,
		MinHeight: 400,
	}
}

// Processor normalizes rendered covers before they are stored.
type Processor struct {
	config Config
}

// NewProcessor creates cover processor
func NewProcessor(config Config) *Processor {
	if config.MaxWidth <= 0 || config.MaxHeight <= 0 {
		config = DefaultConfig()
	}
	return &Processor{config: config}
}

// Process decodes a rendered cover, rejects out-of-range dimensions,
// downscales oversized images and re-encodes as PNG.
func (p *Processor) Process(data []byte) (*ProcessedCover, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover image: %w", err)
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	if width < p.config.MinWidth || height < p.config.MinHeight {
		return nil, fmt.Errorf("cover too small: %dx%d", width, height)
	}

	if width > p.config.MaxWidth || height > p.config.MaxHeight {
		img = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
		width = img.Bounds().Dx()
		height = img.Bounds().Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode cover: %w", err)
	}

	return &ProcessedCover{
		Data:        buf.Bytes(),
		ContentType: "image/png",
		Width:       width,
		Height:      height,
	}, nil
}
