package textutil

import "testing"

func TestNormalizeLabel(t *testing.T) {
	cases := map[string]string{
		"Charter Bold Italic":         "charter-bold-italic",
		"  Noto   Sans\tSC Variable ": "noto-sans-sc-variable",
		"LXGW WenKai/Regular":         "lxgw-wenkai-regular",
		"Weird: Name?":                "weird--name",
		"ÉCOLE Serif":                 "école-serif",
		"   ":                         "",
	}
	for input, want := range cases {
		if got := NormalizeLabel(input); got != want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(` a/b\c:d*e?f"g<h>i|j `); got != "a-b-c-d-efghij" {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
}
