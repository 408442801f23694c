package felt

import (
	"fmt"
	"strings"
)

// ByteArrayMagic is the marker element that precedes a serialized byte
// array in a panic payload. When the decoder sees it, the following
// elements are interpreted as [word_count, words..., pending_word,
// pending_len].
var ByteArrayMagic = MustParse("0x46a6158a16a947e5916b2a2ca68501a45e93d7110e81aa2d6438b1c57c879a3")

// Item is one decoded display item from a panic payload. A single item
// may have consumed several raw field elements.
type Item struct {
	Value    string
	IsString bool
}

// QuoteIfString returns the item value, wrapped in double quotes when
// the item decoded to a string.
func (it Item) QuoteIfString() string {
	if it.IsString {
		return `"` + it.Value + `"`
	}
	return it.Value
}

// Reader iterates over a sequence of field elements, letting the item
// decoder consume a variable number of elements per item.
type Reader struct {
	values []Felt
	pos    int
}

// NewReader returns a Reader over values. The slice is not copied.
func NewReader(values []Felt) *Reader {
	return &Reader{values: values}
}

// Next returns the next raw element, or false when exhausted.
func (r *Reader) Next() (Felt, bool) {
	if r.pos >= len(r.values) {
		return Felt{}, false
	}
	f := r.values[r.pos]
	r.pos++
	return f, true
}

// Remaining reports how many raw elements are left.
func (r *Reader) Remaining() int {
	return len(r.values) - r.pos
}

// FormatNextItem decodes the next display item from r. Byte arrays
// become string items; everything else renders as the element's decimal
// value, annotated with its short-string reading when one exists.
// Returns false when r is exhausted. Malformed byte arrays fall back to
// rendering the magic element itself, so decoding never fails.
func FormatNextItem(r *Reader) (Item, bool) {
	first, ok := r.Next()
	if !ok {
		return Item{}, false
	}
	if first.Equal(ByteArrayMagic) {
		if s, ok := tryDecodeByteArray(r); ok {
			return Item{Value: s, IsString: true}, true
		}
	}
	return Item{Value: FormatValue(first)}, true
}

// FormatValue renders a felt in decimal, appending the short-string
// reading in parentheses when the bytes are printable.
func FormatValue(f Felt) string {
	if s, ok := AsShortString(f); ok && s != "" {
		return fmt.Sprintf("%s ('%s')", f.String(), s)
	}
	return f.String()
}

// tryDecodeByteArray decodes the serialized byte array that follows the
// magic element. On any structural problem it consumes nothing further
// and reports failure.
func tryDecodeByteArray(r *Reader) (string, bool) {
	save := r.pos

	countFelt, ok := r.Next()
	if !ok {
		r.pos = save
		return "", false
	}
	count, ok := countFelt.Uint64()
	if !ok || count > uint64(r.Remaining()) {
		r.pos = save
		return "", false
	}

	var sb strings.Builder
	for i := uint64(0); i < count; i++ {
		word, _ := r.Next()
		b := word.Bytes()
		if len(b) > MaxShortStringLen {
			r.pos = save
			return "", false
		}
		// Full words carry exactly 31 bytes, left-padded with zeros.
		sb.Write(make([]byte, MaxShortStringLen-len(b)))
		sb.Write(b)
	}

	pending, ok := r.Next()
	if !ok {
		r.pos = save
		return "", false
	}
	pendingLenFelt, ok := r.Next()
	if !ok {
		r.pos = save
		return "", false
	}
	pendingLen, ok := pendingLenFelt.Uint64()
	if !ok || pendingLen >= MaxShortStringLen {
		r.pos = save
		return "", false
	}
	b := pending.Bytes()
	if uint64(len(b)) > pendingLen {
		r.pos = save
		return "", false
	}
	sb.Write(make([]byte, pendingLen-uint64(len(b))))
	sb.Write(b)

	return sb.String(), true
}

// EncodeByteArray serializes s as a byte-array panic payload, including
// the leading magic element.
func EncodeByteArray(s string) []Felt {
	out := []Felt{ByteArrayMagic}

	full := len(s) / MaxShortStringLen
	out = append(out, New(uint64(full)))
	for i := 0; i < full; i++ {
		word, _ := FromShortString(s[i*MaxShortStringLen : (i+1)*MaxShortStringLen])
		out = append(out, word)
	}

	pending := s[full*MaxShortStringLen:]
	pendingFelt, _ := FromShortString(pending)
	out = append(out, pendingFelt, New(uint64(len(pending))))
	return out
}
