package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "dedupe after normalization",
			input: []string{"Plumbing", "plumbing", " PLUMBING "},
			want:  []string{"plumbing"},
		},
		{
			name:  "drop empty entries",
			input: []string{"", "  ", "repair"},
			want:  []string{"repair"},
		},
		{
			name:  "preserve order of first occurrence",
			input: []string{"b", "a", "B"},
			want:  []string{"b", "a"},
		},
		{
			name:  "nil slice",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
