package felt

// Short strings pack up to 31 ASCII bytes into a single field element,
// big-endian, most significant byte first.

// MaxShortStringLen is the byte capacity of a single-felt short string.
const MaxShortStringLen = 31

// FromShortString encodes up to 31 bytes of text into a field element.
func FromShortString(s string) (Felt, bool) {
	if len(s) > MaxShortStringLen {
		return Felt{}, false
	}
	var f Felt
	f.v.SetBytes([]byte(s))
	return f, true
}

// AsShortString decodes f as a short string if every byte is printable
// ASCII or common whitespace. The zero element decodes to the empty
// string.
func AsShortString(f Felt) (string, bool) {
	b := f.v.Bytes()
	for _, c := range b {
		if !printableByte(c) {
			return "", false
		}
	}
	return string(b), true
}

func printableByte(c byte) bool {
	if c >= 0x20 && c <= 0x7e {
		return true
	}
	return c == '\t' || c == '\n' || c == '\r'
}
