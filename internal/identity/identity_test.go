package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsPrinterIDValid(t *testing.T) {
	valid, err := GeneratePrinterID()
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "generated id", value: valid, want: true},
		{name: "empty", value: "", want: false},
		{name: "too short", value: valid[:PrinterIDLength-1], want: false},
		{name: "too long", value: valid + "A", want: false},
		{name: "lowercase chars", value: strings.ToLower(valid), want: false},
		{name: "placeholder", value: strings.Repeat("*", PrinterIDLength), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsPrinterIDValid(tt.value))
		})
	}
}

func TestIsPrivateKeyValid(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	require.True(t, IsPrivateKeyValid(key))
	require.True(t, IsPrivateKeyValid(strings.Repeat("x", PrivateKeyMinLength)))
	require.False(t, IsPrivateKeyValid(""))
	require.False(t, IsPrivateKeyValid("short"))
	require.False(t, IsPrivateKeyValid(strings.Repeat("x", PrivateKeyMinLength-1)))
}

func TestGeneratePrinterID(t *testing.T) {
	t.Run("always validator passing", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			id, err := GeneratePrinterID()
			require.NoError(t, err)
			require.True(t, IsPrinterIDValid(id))
		}
	})

	t.Run("no collisions", func(t *testing.T) {
		seen := make(map[string]struct{}, 10000)
		for i := 0; i < 10000; i++ {
			id, err := GeneratePrinterID()
			require.NoError(t, err)
			_, dup := seen[id]
			require.False(t, dup, "duplicate printer id generated: %s", id)
			seen[id] = struct{}{}
		}
	})
}

func TestGeneratePrivateKey(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.Len(t, key, PrivateKeyLength)
	require.True(t, IsPrivateKeyValid(key))

	other, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.NotEqual(t, key, other)
}
