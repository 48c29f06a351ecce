package currency

import "testing"

func TestFormatBRLCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{15050, "R$ 150,50"},
		{100, "R$ 1,00"},
		{123456789, "R$ 1.234.567,89"},
	}
	for _, tc := range cases {
		if got := FormatBRLCents(tc.cents); got != tc.want {
			t.Fatalf("FormatBRLCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
