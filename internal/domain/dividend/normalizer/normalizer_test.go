package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []Option
		want  string
	}{
		{"full-width digits", "８０５８", nil, "8058"},
		{"full-width decimal", "　　　　１０５．０００００００", nil, "105.0000000"},
		{"interior full-width space kept", "２０２３年１２月　１日", nil, "2023年12月 1日"},
		{"separators stripped", "　　１，２３４，５６７", []Option{StripSeparators()}, "1234567"},
		{"separators kept without option", "１，２３４", nil, "1,234"},
		{"code brackets and spaces", "（８０５８　　）", []Option{StripSpaces(), StripChars("（）()")}, "8058"},
		{"full-width letters", "ＡＡＰＬ", nil, "AAPL"},
		{"half-width separators", "3,069", []Option{StripSeparators()}, "3069"},
		{"empty", "", []Option{StripSpaces(), StripSeparators()}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input, tt.opts...))
		})
	}
}

func TestNormalize_Identity(t *testing.T) {
	inputs := []string{"0", "335", "105.0000000", "2023/12/15", "1234567", "AAPL"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, Normalize(in))
			assert.Equal(t, in, Normalize(in, StripSpaces(), StripSeparators()))
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("  　 "))
	assert.False(t, IsBlank("　０"))
}
