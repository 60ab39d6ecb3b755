package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMuLawDecodeKnownValues(t *testing.T) {
	cases := []struct {
		in   byte
		want int16
	}{
		{0xFF, 0},
		{0x7F, 0},
		{0x00, -32124},
		{0x80, 32124},
		{0x0F, -16764},
		{0x8F, 16764},
		{0x70, -120},
		{0xF0, 120},
		{0x7E, -8},
		{0xFE, 8},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MuLawDecode(tc.in), "byte %#02x", tc.in)
	}
}

func TestMuLawDecodeAllBytes(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)
		first := MuLawDecode(b)
		assert.Equal(t, first, MuLawDecode(b), "decode must be deterministic for %#02x", b)

		if b < 0x80 {
			assert.LessOrEqual(t, first, int16(0), "low half decodes negative for %#02x", b)
			assert.Equal(t, -first, MuLawDecode(b|0x80), "sign symmetry for %#02x", b)
		}
	}
}

func TestMuLawDecodeMonotonicWithinHalf(t *testing.T) {
	// 0x80..0xFF runs from the loudest positive value down to zero.
	prev := MuLawDecode(0x80)
	for i := 0x81; i <= 0xFF; i++ {
		cur := MuLawDecode(byte(i))
		assert.Less(t, cur, prev, "byte %#02x", i)
		prev = cur
	}
}

func TestDecodeMuLaw(t *testing.T) {
	in := []byte{0x7F, 0xFF, 0x00, 0x80}
	out := DecodeMuLaw(in)
	require.Len(t, out, len(in))
	for i, b := range in {
		assert.Equal(t, MuLawDecode(b), out[i])
	}

	assert.Empty(t, DecodeMuLaw(nil))
}

func BenchmarkDecodeMuLaw(b *testing.B) {
	mu := make([]byte, 8000) // 1 second at 8kHz
	for i := range mu {
		mu[i] = byte(i % 256)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DecodeMuLaw(mu)
	}
}
