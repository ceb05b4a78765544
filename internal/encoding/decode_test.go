package encoding_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceflow/internal/encoding"
)

func TestDecodeText_UTF8Passthrough(t *testing.T) {
	input := "Acme Corp, Invoice #123, Total 450,00 €\n"
	got, err := encoding.DecodeText([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestDecodeText_UTF8BOM(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("Invoice #123\n")

	got, err := encoding.DecodeText(append(bom, content...))
	require.NoError(t, err)
	assert.Equal(t, "Invoice #123\n", got)
}

func TestDecodeText_UTF16LE(t *testing.T) {
	// "Inv" as UTF-16 LE with BOM.
	input := []byte{0xFF, 0xFE, 'I', 0x00, 'n', 0x00, 'v', 0x00}

	got, err := encoding.DecodeText(input)
	require.NoError(t, err)
	assert.Equal(t, "Inv", got)
}

func TestDecodeText_Windows1252Fallback(t *testing.T) {
	// Windows-1252 "Café": é = 0xE9, invalid as UTF-8.
	input := []byte{'C', 'a', 'f', 0xE9}

	got, err := encoding.DecodeText(input)
	require.NoError(t, err)
	assert.Equal(t, "Café", got)
}

func TestDecodeText_NeverReturnsInvalidUTF8(t *testing.T) {
	inputs := [][]byte{
		{0x80, 0x81, 0x82},
		{'A', 0xFF, 'B'},
		{},
	}
	for _, input := range inputs {
		got, err := encoding.DecodeText(input)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(got))
	}
}
