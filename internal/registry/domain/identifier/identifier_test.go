package identifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{"legal entity tax id", "7710137066", KindTenDigit},
		{"individual tax id", "500100732259", KindTwelveDigit},
		{"registration number", "1027700132195", KindThirteenDigit},
		{"empty", "", KindInvalid},
		{"letters", "abc", KindInvalid},
		{"too short", "12345", KindInvalid},
		{"eleven digits", "12345678901", KindInvalid},
		{"fourteen digits", "12345678901234", KindInvalid},
		{"fifteen digit OGRNIP", "304500116000157", KindInvalid},
		{"leading space", " 7710137066", KindInvalid},
		{"trailing newline", "7710137066\n", KindInvalid},
		{"inner dash", "77101-37066", KindInvalid},
		{"sign", "+771013706", KindInvalid},
		{"full-width digits", "７７１０１３７０６６", KindInvalid},
		{"arabic-indic digits", "٧٧١٠١٣٧٠٦٦", KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.input))
		})
	}
}

func TestKind(t *testing.T) {
	assert.False(t, KindInvalid.Valid())
	assert.True(t, KindTenDigit.Valid())
	assert.Equal(t, "ten_digit", KindTenDigit.String())
	assert.Equal(t, "invalid", Kind(42).String())
	assert.Equal(t, "ИНН", KindTwelveDigit.Label())
	assert.Equal(t, "ОГРН", KindThirteenDigit.Label())
	assert.Empty(t, KindInvalid.Label())
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "****7066", Redact("7710137066"))
	assert.Equal(t, "****", Redact("123"))
	assert.Equal(t, "****абвг", Redact("xxабвг"))
}

func TestProperty_DigitStringsOfAcceptedLengthAreValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.SampledFrom([]int{10, 12, 13}).Draw(rt, "length")
		digits := rapid.StringOfN(rapid.RuneFrom([]rune("0123456789")), length, length, -1).Draw(rt, "digits")

		kind := Classify(digits)
		assert.True(rt, kind.Valid(), "digit string %q should be valid", digits)
	})
}

func TestProperty_DigitStringsOfOtherLengthsAreInvalid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.IntRange(0, 40).
			Filter(func(n int) bool { return n != 10 && n != 12 && n != 13 }).
			Draw(rt, "length")
		digits := strings.Repeat("7", length)

		assert.Equal(rt, KindInvalid, Classify(digits))
	})
}

func TestProperty_NonDigitCharacterIsInvalid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.SampledFrom([]int{10, 12, 13}).Draw(rt, "length")
		digits := []rune(rapid.StringOfN(rapid.RuneFrom([]rune("0123456789")), length, length, -1).Draw(rt, "digits"))
		pos := rapid.IntRange(0, length-1).Draw(rt, "pos")
		bad := rapid.Rune().Filter(func(r rune) bool { return r < '0' || r > '9' }).Draw(rt, "bad")
		digits[pos] = bad

		assert.Equal(rt, KindInvalid, Classify(string(digits)))
	})
}
