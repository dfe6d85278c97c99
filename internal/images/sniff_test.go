package images

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffAcceptsImages(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{1}, 1024)...)

	for name, data := range map[string][]byte{"png": pngBytes, "jpeg": jpeg, "large png": big} {
		t.Run(name, func(t *testing.T) {
			r, err := Sniff(bytes.NewReader(data))
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestSniffRejectsOtherContent(t *testing.T) {
	for name, data := range map[string]string{
		"text":  "just some words",
		"empty": "",
		"pdf":   "%PDF-1.4\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Sniff(strings.NewReader(data))
			assert.ErrorIs(t, err, ErrNotImage)
		})
	}
}
