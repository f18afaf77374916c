package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestProcess_JPEG(t *testing.T) {
	data := makeJPEG(t, 1600, 900)

	res, err := Process(data, 90)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if res.Width != 1600 || res.Height != 900 {
		t.Errorf("dimensions = %dx%d, want 1600x900", res.Width, res.Height)
	}
	if res.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q, want image/jpeg", res.MimeType)
	}
	if res.Extension != ".jpg" {
		t.Errorf("Extension = %q, want .jpg", res.Extension)
	}
	if len(res.Thumb) == 0 {
		t.Error("thumbnail should not be empty")
	}

	// Thumbnail must fit within the configured bounds
	thumb, err := jpeg.Decode(bytes.NewReader(res.Thumb))
	if err != nil {
		t.Fatalf("decoding thumbnail: %v", err)
	}
	tb := thumb.Bounds()
	if tb.Dx() > ThumbWidth || tb.Dy() > ThumbHeight {
		t.Errorf("thumbnail = %dx%d, exceeds %dx%d", tb.Dx(), tb.Dy(), ThumbWidth, ThumbHeight)
	}
}

func TestProcess_PNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}

	res, err := Process(buf.Bytes(), 90)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.MimeType != "image/png" {
		t.Errorf("MimeType = %q, want image/png", res.MimeType)
	}
	if res.Extension != ".png" {
		t.Errorf("Extension = %q, want .png", res.Extension)
	}
}

func TestProcess_RejectsNonImage(t *testing.T) {
	if _, err := Process([]byte("definitely not an image"), 90); err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestDetectMimeType(t *testing.T) {
	data := makeJPEG(t, 10, 10)
	if got := DetectMimeType(data); got != "image/jpeg" {
		t.Errorf("DetectMimeType = %q, want image/jpeg", got)
	}
	if got := DetectMimeType([]byte("plain text here")); got != "text/plain" {
		t.Errorf("DetectMimeType = %q, want text/plain", got)
	}
}
