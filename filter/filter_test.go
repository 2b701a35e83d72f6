package filter

import (
	"reflect"
	"testing"

	"httpls/logging"
)

func TestEmptyFilterMatchesEverything(t *testing.T) {
	f := NewFilter(nil, logging.NewLogger())
	if !f.Empty() {
		t.Fatal("filter with no rules must be empty")
	}
	if !f.Match("anything/at/all.bin") {
		t.Error("empty filter must match")
	}
}

func TestExtensionRules(t *testing.T) {
	f := NewFilter([]string{".pdf", "iso"}, logging.NewLogger())
	tests := []struct {
		path string
		want bool
	}{
		{"doc.pdf", true},
		{"DOC.PDF", true},
		{"sub/image.iso", true},
		{"doc.txt", false},
		{"pdf", false},
	}
	for _, tt := range tests {
		if got := f.Match(tt.path); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestGlobRules(t *testing.T) {
	f := NewFilter([]string{"**/*.iso", "linux-*"}, logging.NewLogger())
	if !f.Match("releases/12.0/dvd.iso") {
		t.Error("doublestar pattern should match nested path")
	}
	if !f.Match("linux-6.8.tar.xz") {
		t.Error("prefix glob should match")
	}
	if f.Match("releases/12.0/dvd.img") {
		t.Error("non-matching path accepted")
	}
}

func TestParseRules(t *testing.T) {
	got := ParseRules(" .pdf, **/*.iso ,,exe ")
	want := []string{".pdf", "**/*.iso", "exe"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseRules = %v, want %v", got, want)
	}
	if ParseRules("  ") != nil {
		t.Error("blank rule list must parse to nil")
	}
}
