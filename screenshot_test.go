package rsgview

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"kickoff", "kickoff"},
		{"goal 1/2", "goal_1_2"},
		{"  ", "unlabeled"},
		{"v1.2-final", "v1.2-final"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	img := unpremultiply([]byte{
		100, 50, 0, 200,
		10, 20, 30, 255,
		0, 0, 0, 0,
	}, 3, 1)
	want := []uint8{127, 63, 0, 200, 10, 20, 30, 255, 0, 0, 0, 0}
	for i, b := range want {
		if img.Pix[i] != b {
			t.Errorf("Pix[%d] = %d, want %d", i, img.Pix[i], b)
		}
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := writePNG(path, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("writePNG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("Stat = %v, %v", info, err)
	}
}
