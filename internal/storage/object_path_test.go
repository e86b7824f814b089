package storage

import (
	"strings"
	"testing"
)

func TestBuildPhotoKey(t *testing.T) {
	key := buildPhotoKey(PhotoMeta{UserID: 42, Extension: "jpg"})

	if !strings.HasPrefix(key, "photos/42/") {
		t.Fatalf("expected per-user prefix, got %q", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("expected jpg extension, got %q", key)
	}
	if strings.Contains(key, "//") || strings.HasPrefix(key, "/") {
		t.Fatalf("malformed key: %q", key)
	}
	// photos/<user>/<yyyy>/<mm>/<dd>/<ts>.<ext>
	if parts := strings.Split(key, "/"); len(parts) != 6 {
		t.Fatalf("expected 6 path segments, got %d in %q", len(parts), key)
	}
}

func TestBuildPhotoKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := buildPhotoKey(PhotoMeta{UserID: 1, Extension: "png"})
		if seen[key] {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = true
	}
}

func TestNormalizeExtension(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"jpg", "jpg"},
		{".PNG", "png"},
		{"  webp  ", "webp"},
		{"", "bin"},
		{"../etc", "etc"},
		{"we!rd#", "werd"},
	}

	for _, tt := range tests {
		if got := normalizeExtension(tt.input); got != tt.want {
			t.Errorf("normalizeExtension(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestJoinPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"", "photos/1/a.jpg", "photos/1/a.jpg"},
		{"uploads", "photos/1/a.jpg", "uploads/photos/1/a.jpg"},
		{"/uploads/", "/photos/1/a.jpg", "uploads/photos/1/a.jpg"},
		{"  deep/prefix  ", "a.jpg", "deep/prefix/a.jpg"},
	}

	for _, tt := range tests {
		if got := joinPrefix(tt.prefix, tt.key); got != tt.want {
			t.Errorf("joinPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}

func TestDetectContentType(t *testing.T) {
	if ct := detectContentType("png"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if ct := detectContentType("unknownext"); ct != "application/octet-stream" {
		t.Fatalf("expected fallback content type, got %q", ct)
	}
}
