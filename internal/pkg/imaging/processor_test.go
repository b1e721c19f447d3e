package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: 60, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestProcessKeepsInBoundsImage(t *testing.T) {
	p := NewProcessor(DefaultConfig())

	out, err := p.Process(encodePNG(t, 645, 860))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Width != 645 || out.Height != 860 {
		t.Fatalf("expected 645x860, got %dx%d", out.Width, out.Height)
	}
	if out.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %s", out.ContentType)
	}
}

func TestProcessDownscalesOversized(t *testing.T) {
	cfg := DefaultConfig()
	p := NewProcessor(cfg)

	out, err := p.Process(encodePNG(t, cfg.MaxWidth*2, cfg.MaxHeight*2))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Width > cfg.MaxWidth || out.Height > cfg.MaxHeight {
		t.Fatalf("not downscaled: %dx%d", out.Width, out.Height)
	}
}

func TestProcessRejectsTinyImage(t *testing.T) {
	p := NewProcessor(DefaultConfig())
	if _, err := p.Process(encodePNG(t, 100, 100)); err == nil {
		t.Fatal("expected error for undersized image")
	}
}

func TestProcessRejectsGarbage(t *testing.T) {
	p := NewProcessor(DefaultConfig())
	if _, err := p.Process([]byte("definitely not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}
