package storage

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "photo.jpg", "photo.jpg"},
		{"unix path", "../../etc/passwd", "passwd"},
		{"windows path", "..\\..\\boot.ini", "boot.ini"},
		{"empty", "", "file"},
		{"trailing slash", "dir/", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFileName(tt.input); got != tt.want {
				t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
