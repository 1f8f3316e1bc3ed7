package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}

	path := filepath.Join(t.TempDir(), "xray.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return path
}

func TestLoad_PNG(t *testing.T) {
	path := writeTestPNG(t, 512, 384)

	att, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer att.Preview.Release()

	if att.Filename != "xray.png" || att.ContentType != "image/png" {
		t.Errorf("Unexpected attachment metadata: %+v", att)
	}
	if len(att.Data) == 0 {
		t.Error("Attachment must carry the original bytes")
	}
	if att.Preview == nil || att.Preview.Path == "" {
		t.Fatal("Expected a preview handle")
	}

	pf, err := os.Open(att.Preview.Path)
	if err != nil {
		t.Fatalf("Preview file missing: %v", err)
	}
	defer pf.Close()
	thumb, err := png.Decode(pf)
	if err != nil {
		t.Fatalf("Preview is not a PNG: %v", err)
	}
	if got := thumb.Bounds().Dx(); got != ThumbnailWidth {
		t.Errorf("Expected thumbnail width %d, got %d", ThumbnailWidth, got)
	}
}

func TestLoad_SmallImageNotUpscaled(t *testing.T) {
	path := writeTestPNG(t, 100, 80)

	att, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer att.Preview.Release()

	pf, err := os.Open(att.Preview.Path)
	if err != nil {
		t.Fatalf("Preview file missing: %v", err)
	}
	defer pf.Close()
	thumb, err := png.Decode(pf)
	if err != nil {
		t.Fatalf("Preview is not a PNG: %v", err)
	}
	if thumb.Bounds().Dx() != 100 {
		t.Errorf("Small images must keep their size, got width %d", thumb.Bounds().Dx())
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := Load(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestLoad_CorruptPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("definitely not a png"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected a decode error for corrupt data")
	}
}

func TestPreviewRelease_RemovesFile(t *testing.T) {
	att, err := Load(writeTestPNG(t, 300, 300))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	path := att.Preview.Path
	if err := att.Preview.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Release must remove the preview file")
	}
}
