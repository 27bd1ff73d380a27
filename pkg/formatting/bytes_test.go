package formatting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/auditmarks/pkg/formatting"
)

const mb = 1024 * 1024

func TestParseBytes(t *testing.T) {
	valid := []struct {
		input string
		want  int64
	}{
		{"1024", 1024},
		{"512B", 512},
		{"1KB", 1024},
		{"5MB", 5 * mb},
		{"50MB", 50 * mb},
		{"2GB", 2 * 1024 * mb},
		{"10mb", 10 * mb},
		{"100 MB", 100 * mb},
		{"  5MB  ", 5 * mb},
		{"1.5KB", 1536},
		{"0", 0},
	}

	for _, tt := range valid {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, input := range []string{"", "50XX", "MB", "-5MB", "five megabytes"} {
		t.Run("invalid "+input, func(t *testing.T) {
			_, err := formatting.ParseBytes(input)
			assert.Error(t, err)
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 2, "0 B"},
		{500, 0, "500 B"},
		{1024, 0, "1 KB"},
		{5 * mb, 0, "5 MB"},
		{1536 * 1024, 1, "1.5 MB"},
		{1536, -3, "2 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatting.FormatBytes(tt.n, tt.precision))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	n, err := formatting.ParseBytes(formatting.FormatBytes(5*mb, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(5*mb), n)
}
