package midifile

// DecodeVarLen reads a MIDI variable-length quantity: 7 bits per byte,
// most significant first, high bit set on every byte but the last.
// Returns the value and the number of bytes consumed.
func DecodeVarLen(data []byte) (uint32, int) {
	var value uint32
	n := 0
	for i := 0; i < len(data) && i < 4; i++ {
		b := data[i]
		n++
		value = value<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			break
		}
	}
	return value, n
}

// EncodeVarLen writes n as a variable-length quantity. Values fit in
// at most 4 bytes (28 bits of payload).
func EncodeVarLen(n uint32) []byte {
	out := []byte{byte(n & 0x7F)}
	n >>= 7
	for n > 0 {
		out = append([]byte{byte(n&0x7F) | 0x80}, out...)
		n >>= 7
	}
	return out
}
