//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseFolkeregisteridentifikator checks that parsing never panics and
// that accepted values round-trip.
func FuzzParseFolkeregisteridentifikator(f *testing.F) {
	f.Add("")
	f.Add("09498230323")
	f.Add("'; DROP TABLE grunnlagshendelse;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("09498230323\x00")

	f.Fuzz(func(t *testing.T, input string) {
		fnr, err := ParseFolkeregisteridentifikator(input)
		if err != nil {
			return
		}
		if fnr.String() != input {
			t.Errorf("accepted value changed: %q -> %q", input, fnr.String())
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

func FuzzParseSakID(f *testing.F) {
	f.Add("1")
	f.Add("0")
	f.Add("-7")
	f.Add("9223372036854775808")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseSakID(input)
		if err == nil && id <= 0 {
			t.Errorf("non-positive sak id accepted: %q", input)
		}
	})
}
