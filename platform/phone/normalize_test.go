package phone

import "testing"

func TestDedupKey_StripsNonDigits(t *testing.T) {
	got := DedupKey("+55 (11) 98765-4321")
	if got != "5511987654321" {
		t.Fatalf("expected 5511987654321, got %q", got)
	}
}

func TestDedupKey_FormattingVariantsCollapse(t *testing.T) {
	a := DedupKey("(11) 98765-4321")
	b := DedupKey("11 9 8765 4321")
	if a != b {
		t.Fatalf("expected identical keys, got %q and %q", a, b)
	}
}

func TestIsUsableDedupKey(t *testing.T) {
	if IsUsableDedupKey("1234567") {
		t.Fatal("7 digits should not be usable")
	}
	if !IsUsableDedupKey("12345678") {
		t.Fatal("8 digits should be usable")
	}
}

func TestContactKey_NationalAndInternationalCollapse(t *testing.T) {
	national := ContactKey("(11) 98765-4321")
	international := ContactKey("+55 11 98765-4321")
	if national != international {
		t.Fatalf("expected identical keys, got %q and %q", national, international)
	}
	if national != "5511987654321" {
		t.Fatalf("expected 5511987654321, got %q", national)
	}
}

func TestContactKey_UnparsableInputKeepsRawDigits(t *testing.T) {
	if got := ContactKey("ramal 123-45"); got != "12345" {
		t.Fatalf("expected 12345, got %q", got)
	}
}
