package sanitize

import "testing"

func TestText_StripsTagsFromComments(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"cliente pediu <b>desconto</b>", "cliente pediu desconto"},
		{"<script>alert(1)</script>ligar amanha", "alert(1)ligar amanha"},
		{"&lt;img src=x&gt;", ""},
		{"  sem html  ", "sem html"},
	}
	for _, c := range cases {
		if got := Text(c.in); got != c.want {
			t.Fatalf("Text(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTextPtr_NilPassesThrough(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("nil input must stay nil")
	}
	in := "<i>obs</i>"
	if got := TextPtr(&in); got == nil || *got != "obs" {
		t.Fatalf("TextPtr = %v", got)
	}
}
