package utils

import "testing"

func TestValidatePhoneNumber(t *testing.T) {
	valid := []string{"+15550001111", "+442079460958", "+12345678"}
	invalid := []string{"15550001111", "+1555", "+1555000111a", ""}

	for _, p := range valid {
		if !ValidatePhoneNumber(p) {
			t.Errorf("expected %q to be valid", p)
		}
	}
	for _, p := range invalid {
		if ValidatePhoneNumber(p) {
			t.Errorf("expected %q to be invalid", p)
		}
	}
}

func TestValidateZipCode(t *testing.T) {
	if !ValidateZipCode("93650") {
		t.Errorf("expected 93650 to be valid")
	}
	for _, z := range []string{"9365", "936500", "9365a", ""} {
		if ValidateZipCode(z) {
			t.Errorf("expected %q to be invalid", z)
		}
	}
}

func TestValidateVoucherCodeFormat(t *testing.T) {
	valid := []string{"abcdefghi", "ABC123", "a"}
	invalid := []string{"", "abc-def-ghi", "abc def", "aaaaaaaaaaaaaaaaaaaaa"}

	for _, c := range valid {
		if !ValidateVoucherCodeFormat(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}
	for _, c := range invalid {
		if ValidateVoucherCodeFormat(c) {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}

func TestValidateStreetAddress(t *testing.T) {
	valid := []string{"123 Main St", "Apt #4, 5th Ave"}
	invalid := []string{"", "123 Main St?", "user@host"}

	for _, a := range valid {
		if !ValidateStreetAddress(a) {
			t.Errorf("expected %q to be valid", a)
		}
	}
	for _, a := range invalid {
		if ValidateStreetAddress(a) {
			t.Errorf("expected %q to be invalid", a)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("maria@example.com") {
		t.Errorf("expected maria@example.com to be valid")
	}
	for _, e := range []string{"maria", "maria@", "@example.com", "maria@example"} {
		if ValidateEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}
