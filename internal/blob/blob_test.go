package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThumbnailURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"jpeg", "/media/ABCD/p1/photo/abc.jpg", "/media/ABCD/p1/photo/abc_200x200.webp"},
		{"png", "/media/ABCD/p1/photo/abc.png", "/media/ABCD/p1/photo/abc_200x200.webp"},
		{"no extension", "/media/ABCD/p1/photo/abc", "/media/ABCD/p1/photo/abc_200x200.webp"},
		{"dot in directory", "/media/v1.2/abc", "/media/v1.2/abc_200x200.webp"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThumbnailURL(tt.url))
		})
	}
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "ABCD/p1/photo/f.jpg", ObjectPath("ABCD", "p1", "photo", "f.jpg"))
}
