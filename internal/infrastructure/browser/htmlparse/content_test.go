package htmlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractReward(t *testing.T) {
	tests := []struct {
		name string
		html string
		want float64
	}{
		{"no container", `<body><div>nothing</div></body>`, 0},
		{"plain", `<body><div id="reward"><pre>0.75</pre></div></body>`, 0.75},
		{"nested pre", `<body><div id="reward"><h1>Your score</h1><div><pre> 1.0
</pre></div></div></body>`, 1.0},
		{"first pre wins", `<body><div id="reward"><pre>0.5</pre><pre>0.9</pre></div></body>`, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractReward(tt.html)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestExtractReward_Malformed(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"not a number", `<body><div id="reward"><pre>great</pre></div></body>`},
		{"empty pre", `<body><div id="reward"><pre></pre></div></body>`},
		{"missing pre", `<body><div id="reward">0.5</div></body>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractReward(tt.html)
			assert.ErrorIs(t, err, ErrMalformedReward)
		})
	}
}

func TestInstructionText(t *testing.T) {
	html := `<body><div id="instruction-text" class="text-center">
	<h4>Instruction: <br>i need a long lasting 6.76 fl oz bottle of l'eau d'issey</h4>
</div></body>`

	text, err := InstructionText(html)
	require.NoError(t, err)
	assert.Equal(t, "Instruction: i need a long lasting 6.76 fl oz bottle of l'eau d'issey", text)
}

func TestInstructionText_Missing(t *testing.T) {
	_, err := InstructionText(`<body><div id="instruction-text">no heading</div></body>`)
	assert.ErrorIs(t, err, ErrInstructionNotFound)

	_, err = InstructionText(`<body></body>`)
	assert.ErrorIs(t, err, ErrInstructionNotFound)
}
