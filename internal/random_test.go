package internal

import "testing"

func TestNewOTPWidthAndRange(t *testing.T) {
	for digits := 4; digits <= 10; digits++ {
		for i := 0; i < 200; i++ {
			otp, err := NewOTP(digits)
			if err != nil {
				t.Fatalf("NewOTP(%d) failed: %v", digits, err)
			}
			if len(otp) != digits {
				t.Fatalf("NewOTP(%d) produced %d characters: %q", digits, len(otp), otp)
			}
			if otp[0] == '0' {
				t.Fatalf("NewOTP(%d) produced a leading zero: %q", digits, otp)
			}
			for _, r := range otp {
				if r < '0' || r > '9' {
					t.Fatalf("NewOTP(%d) produced a non-digit: %q", digits, otp)
				}
			}
		}
	}
}

func TestNewOTPRejectsBadWidths(t *testing.T) {
	for _, digits := range []int{-1, 0, 3, 11} {
		if _, err := NewOTP(digits); err == nil {
			t.Fatalf("expected error for %d digits", digits)
		}
	}
}

func TestRecordIDRoundTrip(t *testing.T) {
	rid, err := NewRecordID()
	if err != nil {
		t.Fatalf("NewRecordID failed: %v", err)
	}

	encoded := rid.String()
	if len(encoded) != 22 {
		t.Fatalf("expected 22-character encoding, got %d: %q", len(encoded), encoded)
	}

	parsed, err := ParseRecordID(encoded)
	if err != nil {
		t.Fatalf("ParseRecordID failed: %v", err)
	}
	if parsed != rid {
		t.Fatalf("round trip mismatch: %v != %v", parsed, rid)
	}
}

func TestRecordIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 256)
	for i := 0; i < 256; i++ {
		rid, err := NewRecordID()
		if err != nil {
			t.Fatalf("NewRecordID failed: %v", err)
		}
		key := rid.String()
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate record id %q", key)
		}
		seen[key] = struct{}{}
	}
}

func TestParseRecordIDRejectsBadInput(t *testing.T) {
	if _, err := ParseRecordID("not base64!"); err == nil {
		t.Fatal("expected error for invalid encoding")
	}
	if _, err := ParseRecordID("c2hvcnQ"); err == nil {
		t.Fatal("expected error for wrong length")
	}
}
