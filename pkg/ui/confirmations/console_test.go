// pkg/ui/confirmations/console_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: None
// PURPOSE: Test console yes/no prompts

package confirmations

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleDialog_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"full yes", "YES\n", true},
		{"padded", "  y  \n", true},
		{"no", "n\n", false},
		{"empty line", "\n", false},
		{"end of input", "", false},
		{"no trailing newline", "yes", true},
		{"anything else", "sure\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			d := NewDialog(strings.NewReader(tt.input), &out)

			got, err := d.Confirm("Overwrite ~/.bashrc?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Overwrite ~/.bashrc? [y/N]: ")
		})
	}
}

func TestConsoleDialog_MultipleQuestions(t *testing.T) {
	var out bytes.Buffer
	d := NewDialog(strings.NewReader("y\nn\n"), &out)

	first, err := d.Confirm("first?")
	require.NoError(t, err)
	second, err := d.Confirm("second?")
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}
