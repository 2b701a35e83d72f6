package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"httpls/listing"
)

func TestFormatEntry(t *testing.T) {
	e := listing.FileEntry{
		Name:     "doc.pdf",
		Modified: time.Date(2023, time.April, 26, 14, 10, 0, 0, time.UTC),
		Size:     493568,
	}
	line := FormatEntry(e)
	if !strings.HasPrefix(line, "- ") {
		t.Errorf("file marker missing: %q", line)
	}
	for _, want := range []string{"493568", "2023-04-26 14:10", "doc.pdf"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}

	dir := listing.FileEntry{Name: "sub/", Size: listing.SizeUnknown}
	line = FormatEntry(dir)
	if !strings.HasPrefix(line, "d ") {
		t.Errorf("directory marker missing: %q", line)
	}
	if !strings.Contains(line, " - ") {
		t.Errorf("unknown size should print as -: %q", line)
	}
}

func TestFormatListingPlain(t *testing.T) {
	entries := []listing.FileEntry{
		{Name: "a.txt", Size: listing.SizeUnknown},
		{Name: "b/", Size: listing.SizeUnknown},
	}
	got := FormatListing("/pub", entries, false)
	want := "/pub:\na.txt\nb/\n"
	if got != want {
		t.Errorf("FormatListing = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	entries := []listing.FileEntry{
		{Name: "a.txt", Size: 42},
		{Name: "b/", Size: listing.SizeUnknown},
	}
	out, err := FormatJSON("/pub", entries)
	if err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var decoded struct {
		Directory string `json:"directory"`
		Entries   []struct {
			Name string `json:"name"`
			Dir  bool   `json:"dir"`
			Size *int64 `json:"size"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Directory != "/pub" || len(decoded.Entries) != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.Entries[0].Size == nil || *decoded.Entries[0].Size != 42 {
		t.Error("known size must be present")
	}
	if decoded.Entries[1].Size != nil {
		t.Error("unknown size must be null/absent")
	}
	if !decoded.Entries[1].Dir {
		t.Error("directory flag lost")
	}
}
