package protocol

import "strconv"

// The device pads responses with carriage returns around the payload
// characters. Decoders strip that padding before matching the contract.

func isPadding(b byte) bool {
	return b == ' ' || b == '\r' || b == '\n' || b == '\t'
}

// trimPadding strips leading and trailing inter-character padding from a
// raw response without copying.
func trimPadding(raw []byte) []byte {
	start := 0
	for start < len(raw) && isPadding(raw[start]) {
		start++
	}
	end := len(raw)
	for end > start && isPadding(raw[end-1]) {
		end--
	}
	return raw[start:end]
}

// parseRegisterField parses one ASCII signed decimal register field.
// Register values share the parameter range: 16-bit signed.
func parseRegisterField(field []byte) (int, error) {
	v, err := strconv.ParseInt(string(trimPadding(field)), 10, 16)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
