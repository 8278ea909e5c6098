package main

import "testing"

func TestParseArgs(t *testing.T) {
	params, err := parseArgs([]string{"width=300", "fit=crop_focal", "tag=true", "alt=a=b"})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if got := params.Keys(); len(got) != 4 || got[0] != "width" || got[3] != "alt" {
		t.Errorf("unexpected key order %v", got)
	}
	if v, _ := params.Get("tag"); v != true {
		t.Errorf("tag = %v, want true", v)
	}
	if params.String("alt") != "a=b" {
		t.Errorf("alt = %q, want a=b", params.String("alt"))
	}
}

func TestParseArgs_Invalid(t *testing.T) {
	for _, arg := range []string{"width", "=300"} {
		if _, err := parseArgs([]string{arg}); err == nil {
			t.Errorf("expected error for %q", arg)
		}
	}
}
