package gravit

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"after-move", "after-move"},
		{"after move", "after_move"},
		{"a/b\\c:d", "a_b_c_d"},
		{"v1.2", "v1.2"},
		{"héllo", "h_llo"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderImageScale(t *testing.T) {
	s := NewScene()
	_ = s.AddLayer("L").AppendChild(filledRect(5, 5, 10, 4, ColorBlack))
	img := RenderImage(s, RenderOptions{Scale: 3})
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 12 {
		t.Errorf("image = %v, want 30x12", b)
	}
	if a := img.RGBAAt(29, 11).A; a != 255 {
		t.Errorf("corner alpha = %d, want 255", a)
	}
}

func TestRenderImageBackgroundAndNode(t *testing.T) {
	s := NewScene()
	layer := s.AddLayer("L")
	a := filledRect(0, 0, 4, 4, Color{1, 0, 0, 1})
	b := filledRect(10, 0, 4, 4, Color{0, 0, 1, 1})
	_ = layer.AppendChild(a)
	_ = layer.AppendChild(b)

	img := RenderImage(s, RenderOptions{Node: b, Background: ColorWhite})
	if got := img.Bounds(); got.Dx() != 4 || got.Dy() != 4 {
		t.Fatalf("image = %v, want 4x4", got)
	}
	if c := img.RGBAAt(1, 1); c.B != 255 || c.R != 0 {
		t.Errorf("pixel = %v, want blue", c)
	}

	empty := RenderImage(NewScene(), RenderOptions{})
	if !empty.Bounds().Empty() {
		t.Errorf("empty scene image = %v, want empty", empty.Bounds())
	}
}

func TestThumbnail(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 50))
	th := Thumbnail(img, 100)
	if b := th.Bounds(); b.Dx() != 100 || b.Dy() != 25 {
		t.Errorf("thumbnail = %v, want 100x25", b)
	}
	tall := Thumbnail(image.NewRGBA(image.Rect(0, 0, 10, 400)), 40)
	if b := tall.Bounds(); b.Dx() != 1 || b.Dy() != 40 {
		t.Errorf("tall thumbnail = %v, want 1x40", b)
	}
	if small := Thumbnail(img, 500); small != img {
		t.Error("image within the limit was copied")
	}
}

func TestWritePNGUnpremultiplies(t *testing.T) {
	s := NewScene()
	r := filledRect(0, 0, 2, 2, Color{1, 0, 0, 1})
	_ = r.Styles()[0].SetProperty("opacity", 0.5)
	_ = s.AddLayer("L").AppendChild(r)

	path := filepath.Join(t.TempDir(), "out.png")
	if err := WritePNG(path, RenderImage(s, RenderOptions{})); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded %T, want *image.NRGBA", img)
	}
	c := nrgba.NRGBAAt(1, 1)
	if c.R != 255 || c.A < 126 || c.A > 129 {
		t.Errorf("pixel = %v, want straight red at half alpha", c)
	}
}

func TestExportSnapshot(t *testing.T) {
	s := NewScene()
	_ = s.AddLayer("L").AppendChild(filledRect(0, 0, 8, 8, ColorBlack))
	dir := filepath.Join(t.TempDir(), "nested", "snaps")
	path, err := ExportSnapshot(s, dir, "first shot", 2)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path = %q, want inside %q", path, dir)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot missing: %v", err)
	}
}

func TestWritePNGBadPath(t *testing.T) {
	err := WritePNG(filepath.Join(t.TempDir(), "missing", "x.png"), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
