// Package audio provides the G.711 μ-law expansion and level metering
// used to turn inbound telephony payloads into a loudness signal.
package audio

// MuLaw codec constants
const (
	MuLawBias      = 0x84
	muLawSignBit   = 0x80
	muLawSegShift  = 4
	muLawSegMask   = 0x07
	muLawQuantMask = 0x0F
)

// MuLawDecode converts a single μ-law byte to a 16-bit signed PCM sample.
// Every byte value is valid input. This is the standard G.711 expansion;
// the ((mantissa<<4)+bias)<<(exponent+3) variant wraps int16 for high
// exponents and is not used.
func MuLawDecode(mu byte) int16 {
	mu = ^mu
	sign := mu & muLawSignBit
	exponent := (mu >> muLawSegShift) & muLawSegMask
	mantissa := mu & muLawQuantMask

	magnitude := ((int32(mantissa) << 3) + MuLawBias) << exponent
	sample := int16(magnitude - MuLawBias)
	if sign != 0 {
		return -sample
	}
	return sample
}

// DecodeMuLaw expands μ-law bytes into a same-length slice of PCM samples.
func DecodeMuLaw(mu []byte) []int16 {
	out := make([]int16, len(mu))
	for i, b := range mu {
		out[i] = MuLawDecode(b)
	}
	return out
}
