package listing

import (
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", SizeUnknown},
		{"-", SizeUnknown},
		{"482", 482},
		{"1K", 1024},
		{"2M", 2 * 1024 * 1024},
		{"1G", 1073741824},
		{"1.5K", 1536},
		{"482 KiB", 493568},
		{"70.5 MiB", 73924608},
		{"500B", 500},
		{"3,145,728", 3145728},
		{"0", 0},
		{"lots", SizeUnknown},
		{"12 files", SizeUnknown},
	}
	for _, tt := range tests {
		if got := ParseSize(tt.in); got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTakeSize(t *testing.T) {
	size, rest, ok := TakeSize("482K  PDF document")
	if !ok || size != 482*1024 {
		t.Fatalf("TakeSize: got size=%d ok=%v", size, ok)
	}
	if rest != "  PDF document" {
		t.Errorf("TakeSize rest = %q", rest)
	}

	if _, _, ok := TakeSize("no size here"); ok {
		t.Error("TakeSize matched non-size text")
	}

	size, _, ok = TakeSize("-")
	if !ok || size != SizeUnknown {
		t.Errorf("TakeSize(\"-\") = %d, %v; want unknown placeholder match", size, ok)
	}
}

func TestParseTimeFormats(t *testing.T) {
	want := time.Date(2023, time.April, 26, 14, 10, 0, 0, time.UTC)
	for _, in := range []string{
		"26-Apr-2023 14:10",
		"2023-04-26 14:10",
		"2023-Apr-26 14:10",
	} {
		got, ok := ParseTime(in)
		if !ok {
			t.Errorf("ParseTime(%q): no format matched", in)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTime(%q) = %v, want %v", in, got, want)
		}
	}

	withSeconds := time.Date(2023, time.April, 26, 14, 10, 5, 0, time.UTC)
	for _, in := range []string{
		"26-Apr-2023 14:10:05",
		"2023-04-26 14:10:05",
		"2023-04-26T14:10:05Z",
		"Wed Apr 26 14:10:05 2023",
	} {
		got, ok := ParseTime(in)
		if !ok {
			t.Errorf("ParseTime(%q): no format matched", in)
			continue
		}
		if !got.Equal(withSeconds) {
			t.Errorf("ParseTime(%q) = %v, want %v", in, got, withSeconds)
		}
	}

	dateOnly, ok := ParseTime("2022-01-01")
	if !ok || !dateOnly.Equal(time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseTime(date only) = %v, %v", dateOnly, ok)
	}

	if _, ok := ParseTime("next tuesday"); ok {
		t.Error("ParseTime matched junk")
	}
	if _, ok := ParseTime("482"); ok {
		t.Error("ParseTime matched a bare number")
	}
}

func TestTakeTimeLeavesRemainder(t *testing.T) {
	_, rest, ok := TakeTime("26-Apr-2023 14:10    482K")
	if !ok {
		t.Fatal("TakeTime: no match")
	}
	if rest != "    482K" {
		t.Errorf("TakeTime rest = %q", rest)
	}
}

func TestHrefToName(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"doc.pdf", "doc.pdf"},
		{"sub/", "sub/"},
		{"/base/path/file.txt", "file.txt"},
		{"a%20b.txt", "a b.txt"},
		{"nested/dir/", "dir/"},
		{"http://mirror.example.org/debian/", "debian/"},
	}
	for _, tt := range tests {
		if got := hrefToName(tt.href); got != tt.want {
			t.Errorf("hrefToName(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestIsNavLink(t *testing.T) {
	nav := []struct{ label, href string }{
		{"Parent Directory", "/"},
		{"Parent directory/", "../"},
		{"..", ".."},
		{"../", "../"},
		{"Name", "?C=N;O=D"},
		{"top", "#top"},
	}
	for _, tt := range nav {
		if !isNavLink(tt.label, tt.href) {
			t.Errorf("isNavLink(%q, %q) = false, want true", tt.label, tt.href)
		}
	}
	if isNavLink("doc.pdf", "doc.pdf") {
		t.Error("isNavLink flagged a regular file link")
	}
	if isNavLink("sub/", "sub/") {
		t.Error("isNavLink flagged a sub-directory link")
	}
}
