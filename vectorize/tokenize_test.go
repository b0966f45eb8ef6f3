package vectorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "punctuation only",
			text: "?! ... --",
			want: nil,
		},
		{
			name: "single word",
			text: "EBITDA?",
			want: []string{"ebitda"},
		},
		{
			name: "unigrams then bigrams",
			text: "What is EBITDA?",
			want: []string{"what", "is", "ebitda", "what is", "is ebitda"},
		},
		{
			name: "apostrophes split words",
			text: "Qu'est-ce que",
			want: []string{"qu", "est", "ce", "que", "qu est", "est ce", "ce que"},
		},
		{
			name: "accented letters and digits",
			text: "Marge brute 2024",
			want: []string{"marge", "brute", "2024", "marge brute", "brute 2024"},
		},
		{
			name: "non ascii case folding",
			text: "DÉCAISSEMENT Élevé",
			want: []string{"décaissement", "élevé", "décaissement élevé"},
		},
		{
			name: "repeated words keep multiplicity",
			text: "cash cash",
			want: []string{"cash", "cash", "cash cash"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}
