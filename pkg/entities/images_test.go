package entities

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/decker502/canadian/pkg/embedded"
	"github.com/decker502/canadian/pkg/picture"
)

// encodePNG 生成纯色 PNG
func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// TestImageLoader_File 测试从本地目录加载并缓存
func TestImageLoader_File(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dot.png"), encodePNG(t, 4, 6, color.White), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}

	l := NewImageLoader(dir)
	img, err := l.LoadImage("dot.png")
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 6 {
		t.Errorf("Expected 4x6 image, got %v", b)
	}

	again, err := l.LoadImage("dot.png")
	if err != nil {
		t.Fatalf("LoadImage (cached) failed: %v", err)
	}
	if again != img {
		t.Error("Expected cached image to be reused")
	}

	if _, err := l.LoadImage("missing.png"); err == nil {
		t.Error("Expected error for missing image")
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not a png"), 0644); err != nil {
		t.Fatalf("write bad png: %v", err)
	}
	if _, err := l.LoadImage("bad.png"); err == nil {
		t.Error("Expected decode error")
	}
}

// TestImageLoader_Embedded 测试嵌入资源优先
func TestImageLoader_Embedded(t *testing.T) {
	embedded.Init(fstest.MapFS{
		"assets/images/sprite.png": {Data: encodePNG(t, 8, 8, color.Black)},
	}, fstest.MapFS{})

	var l ImageLoader
	img, err := l.LoadImage("assets/images/sprite.png")
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("Expected 8px wide image, got %v", img.Bounds())
	}
}

// TestNewImageActor 测试图片角色
func TestNewImageActor(t *testing.T) {
	dir := t.TempDir()
	for name, c := range map[string]color.Color{"a.png": color.White, "b.png": color.Black} {
		if err := os.WriteFile(filepath.Join(dir, name), encodePNG(t, 20, 10, c), 0644); err != nil {
			t.Fatalf("write png: %v", err)
		}
	}
	l := NewImageLoader(dir)

	a, err := NewImageActor("sprite", l, picture.Pt(100, 100), "a.png", "b.png")
	if err != nil {
		t.Fatalf("NewImageActor failed: %v", err)
	}
	img, ok := a.Root().(*picture.ImageDrawable)
	if !ok {
		t.Fatalf("Expected image root, got %T", a.Root())
	}
	if len(img.Frames()) != 2 {
		t.Errorf("Expected 2 frames, got %d", len(img.Frames()))
	}
	if c := img.Center(); c != picture.Pt(10, 5) {
		t.Errorf("Expected center (10,5), got %v", c)
	}
	if a.HitTest(picture.Pt(100, 100)) == nil {
		t.Error("Expected hit on the opaque image")
	}

	if _, err := NewImageActor("empty", l, picture.Point{}); err == nil {
		t.Error("Expected error without images")
	}
	if _, err := NewImageActor("broken", l, picture.Point{}, "nope.png"); err == nil {
		t.Error("Expected error for missing image")
	}
}
