package main

import (
	"flag"
	"testing"
)

func TestAttrFlagRepeatable(t *testing.T) {
	var attrs stringList
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&attrs, "attr", "")
	if err := fs.Parse([]string{"--attr", "年代", "--attr", "性別, 地域", "--attr", ""}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"年代", "性別", "地域"}
	if len(attrs) != len(want) {
		t.Fatalf("attrs = %v", attrs)
	}
	for i := range want {
		if attrs[i] != want[i] {
			t.Errorf("attrs[%d] = %q, want %q", i, attrs[i], want[i])
		}
	}
	if attrs.String() != "年代,性別,地域" {
		t.Errorf("String() = %q", attrs.String())
	}
}

func TestSeedFrom(t *testing.T) {
	if seedFrom("short") != 0 {
		t.Error("short hash should give zero seed")
	}
	if seedFrom("zzzzzzzzzzzzzzzzzz") != 0 {
		t.Error("non-hex hash should give zero seed")
	}
	if got := seedFrom("00000000000000ff" + "abcdef"); got != 255 {
		t.Errorf("seed = %d, want 255", got)
	}
}
