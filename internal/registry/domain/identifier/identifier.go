// Package identifier classifies raw user input as a registry identifier.
//
// Russian registry identifiers are plain decimal strings:
//   - 10 digits: legal entity tax ID (ИНН юрлица)
//   - 12 digits: individual tax ID (ИНН физлица / ИП)
//   - 13 digits: primary state registration number (ОГРН)
//
// Classification is purely syntactic. Checksums are not verified; the registry
// is the authority on whether an identifier exists.
package identifier

// Kind is the syntactic kind of a registry identifier.
type Kind int

const (
	KindInvalid Kind = iota
	KindTenDigit
	KindTwelveDigit
	KindThirteenDigit
)

// String returns a stable, log-friendly name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTenDigit:
		return "ten_digit"
	case KindTwelveDigit:
		return "twelve_digit"
	case KindThirteenDigit:
		return "thirteen_digit"
	default:
		return "invalid"
	}
}

// Valid reports whether the kind permits a registry lookup.
func (k Kind) Valid() bool {
	return k != KindInvalid
}

// Label is the user-facing name of the identifier kind.
func (k Kind) Label() string {
	switch k {
	case KindTenDigit, KindTwelveDigit:
		return "ИНН"
	case KindThirteenDigit:
		return "ОГРН"
	default:
		return ""
	}
}

// Classify returns the kind of input. Only ASCII decimal digits are accepted,
// so surrounding whitespace, signs or full-width digits make the input invalid.
func Classify(input string) Kind {
	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			return KindInvalid
		}
	}
	switch len(input) {
	case 10:
		return KindTenDigit
	case 12:
		return KindTwelveDigit
	case 13:
		return KindThirteenDigit
	default:
		return KindInvalid
	}
}

// Redact keeps the last four characters of an identifier for logging.
func Redact(input string) string {
	r := []rune(input)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}
