// internal/services/store_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Outfitters", "acme-outfitters"},
		{"  Trim Me  ", "trim-me"},
		{"Café & Co.", "caf-co"},
		{"already-slugged", "already-slugged"},
		{"MiXeD CaSe 42", "mixed-case-42"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), tt.in)
	}
}
