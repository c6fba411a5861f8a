package domain

import "testing"

func TestCheckDigit(t *testing.T) {
	cases := []struct {
		prefix string
		want   int
	}{
		{"CSQU305438", 3},
		{"MSCU123456", 6},
		{"TEMU123456", 5},
	}
	for _, tc := range cases {
		if got := CheckDigit(tc.prefix); got != tc.want {
			t.Errorf("CheckDigit(%s) = %d, want %d", tc.prefix, got, tc.want)
		}
	}

	if got := CheckDigit("SHORT"); got != -1 {
		t.Errorf("expected -1 for short prefix, got %d", got)
	}
	if got := CheckDigit("CSQU30543!"); got != -1 {
		t.Errorf("expected -1 for non-alphanumeric prefix, got %d", got)
	}
}

func TestValidContainerNumber(t *testing.T) {
	valid := []string{"CSQU3054383", "MSCU1234566", "TEMU1234565"}
	for _, n := range valid {
		if !ValidContainerNumber(n) {
			t.Errorf("expected %s to be valid", n)
		}
	}

	invalid := []struct {
		number string
		reason string
	}{
		{"MSCU1234567", "wrong check digit"},
		{"CSQU305438", "too short"},
		{"CSQU30543833", "too long"},
		{"CSXX3054383", "category must be U, J or Z"},
		{"csqu3054383", "lowercase owner code"},
		{"C5QU3054383", "digit in owner code"},
		{"CSQU30543A3", "letter in serial"},
		{"", "empty"},
	}
	for _, tc := range invalid {
		if ValidContainerNumber(tc.number) {
			t.Errorf("expected %q to be invalid (%s)", tc.number, tc.reason)
		}
	}
}

func TestValidContainerNumberCategories(t *testing.T) {
	// J and Z category identifiers are accepted alongside U.
	for _, cat := range []byte{'U', 'J', 'Z'} {
		prefix := "CSQ" + string(cat) + "305438"
		check := CheckDigit(prefix)
		if check < 0 {
			t.Fatalf("CheckDigit(%s) failed", prefix)
		}
		number := prefix + string(byte('0'+check))
		if !ValidContainerNumber(number) {
			t.Errorf("expected %s to be valid", number)
		}
	}
}
