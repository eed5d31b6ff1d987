package domain

import (
	"testing"

	dErrors "teranga/pkg/domain-errors"
)

// Path parameters reach the parsers unfiltered from chi routes.
func FuzzParseIDs(f *testing.F) {
	for _, seed := range []string{
		"",
		"3f2b8c1e-5d4a-4e6b-9a7c-1d2e3f4a5b6c",
		"00000000-0000-0000-0000-000000000000",
		"{3f2b8c1e-5d4a-4e6b-9a7c-1d2e3f4a5b6c}",
		"urn:uuid:3f2b8c1e-5d4a-4e6b-9a7c-1d2e3f4a5b6c",
		"villa-almadies",
		"../favorites",
		"3f2b8c1e-5d4a-4e6b-9a7c-1d2e3f4a5b6c\x00",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		user, errUser := ParseUserID(input)
		_, errProperty := ParsePropertyID(input)
		_, errPurchase := ParsePurchaseID(input)
		_, errDeveloper := ParseDeveloperID(input)
		_, errMessage := ParseMessageID(input)

		accepted := errUser == nil
		for _, err := range []error{errProperty, errPurchase, errDeveloper, errMessage} {
			if (err == nil) != accepted {
				t.Fatalf("id kinds disagree on %q", input)
			}
		}

		if !accepted {
			if !dErrors.HasCode(errUser, dErrors.CodeInvalidInput) {
				t.Fatalf("rejection of %q is not invalid_input: %v", input, errUser)
			}
			return
		}
		if user.IsNil() {
			t.Fatalf("nil id accepted from %q", input)
		}
		again, err := ParseUserID(user.String())
		if err != nil || again != user {
			t.Fatalf("canonical form of %q does not round-trip", input)
		}
	})
}
