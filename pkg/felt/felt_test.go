package felt

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	a := New(40)
	b := New(2)

	assert.Equal(t, "42", a.Add(b).String())
	assert.Equal(t, "38", a.Sub(b).String())
	assert.Equal(t, "80", a.Mul(b).String())
}

func TestSubWrapsAroundModulus(t *testing.T) {
	got := New(0).Sub(New(1))

	want := new(big.Int).Sub(Modulus(), big.NewInt(1))
	assert.Equal(t, want.String(), got.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"decimal", "42", "42", true},
		{"hex", "0x2a", "42", true},
		{"reduced", ModulusText, "0", true},
		{"garbage", "4x2", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.input)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.String())
		})
	}
}

func TestFromInt64Negative(t *testing.T) {
	f := FromInt64(-1)

	want := new(big.Int).Sub(Modulus(), big.NewInt(1))
	assert.Equal(t, want.String(), f.String())
}

func TestShortStringRoundTrip(t *testing.T) {
	f, ok := FromShortString("hello")
	require.True(t, ok)

	s, ok := AsShortString(f)
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestShortStringRejectsOversized(t *testing.T) {
	_, ok := FromShortString("this string is far too long to fit in one felt")
	assert.False(t, ok)
}

func TestAsShortStringRejectsNonPrintable(t *testing.T) {
	_, ok := AsShortString(New(1))
	assert.False(t, ok)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "[]", Join(nil))
	assert.Equal(t, "[42]", Join([]Felt{New(42)}))
	assert.Equal(t, "[1, 2]", Join([]Felt{New(1), New(2)}))
}

func TestFormatNextItemNumeric(t *testing.T) {
	r := NewReader([]Felt{New(1), New(2)})

	first, ok := FormatNextItem(r)
	require.True(t, ok)
	assert.Equal(t, "1", first.QuoteIfString())
	assert.False(t, first.IsString)

	second, ok := FormatNextItem(r)
	require.True(t, ok)
	assert.Equal(t, "2", second.QuoteIfString())

	_, ok = FormatNextItem(r)
	assert.False(t, ok)
}

func TestFormatNextItemShortStringAnnotation(t *testing.T) {
	f, _ := FromShortString("ab")
	r := NewReader([]Felt{f})

	item, ok := FormatNextItem(r)
	require.True(t, ok)
	assert.Equal(t, "24930 ('ab')", item.Value)
	assert.False(t, item.IsString)
}

func TestFormatNextItemByteArray(t *testing.T) {
	payload := EncodeByteArray("assertion failed")
	r := NewReader(payload)

	item, ok := FormatNextItem(r)
	require.True(t, ok)
	assert.True(t, item.IsString)
	assert.Equal(t, `"assertion failed"`, item.QuoteIfString())
	assert.Equal(t, 0, r.Remaining())
}

func TestFormatNextItemLongByteArray(t *testing.T) {
	long := "this message does not fit into a single field element word"
	r := NewReader(EncodeByteArray(long))

	item, ok := FormatNextItem(r)
	require.True(t, ok)
	assert.True(t, item.IsString)
	assert.Equal(t, long, item.Value)
}

func TestFormatNextItemMalformedByteArrayFallsBack(t *testing.T) {
	// Magic with a word count pointing past the end of the payload.
	r := NewReader([]Felt{ByteArrayMagic, New(9)})

	item, ok := FormatNextItem(r)
	require.True(t, ok)
	assert.False(t, item.IsString)
	assert.Equal(t, ByteArrayMagic.String(), item.Value)
}
