package formatter

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ansiPattern matches ANSI escape sequences for stripping before
// comparing rendered output.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestMoney(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"zero", 0, "0.00"},
		{"hundreds", 950.5, "950.50"},
		{"thousands", 38500.5, "38,500.50"},
		{"millions", 1234567.5, "1,234,567.50"},
		{"negative", -8571.43, "-8,571.43"},
		{"exact thousand", 1000, "1,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Money(tt.in))
		})
	}
}

func TestPctAndIndex(t *testing.T) {
	assert.Equal(t, "35.0%", Pct(35))
	assert.Equal(t, "99.9%", Pct(99.94))
	assert.Equal(t, "0.921", Index(0.9211))
}

func TestOptIndex(t *testing.T) {
	assert.Equal(t, "—", OptIndex(nil), "undefined, not zero")

	v := 1.0484
	assert.Equal(t, "1.048", OptIndex(&v))
}
