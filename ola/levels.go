package ola

// EncodeLevels packs channel levels into DMX bytes. Levels are expected to be
// in [0, 255]; anything else keeps only its low 8 bits, so 256 becomes 0 and
// -1 becomes 255.
func EncodeLevels(levels []int) []byte {
	data := make([]byte, len(levels))
	for i, v := range levels {
		data[i] = byte(v)
	}

	return data
}

// DecodeLevels unpacks DMX bytes into channel levels in [0, 255].
func DecodeLevels(data []byte) []int {
	levels := make([]int, len(data))
	for i, b := range data {
		levels[i] = int(b)
	}

	return levels
}
