package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"httpls/listing"
)

// FormatTimestamp formats a time for display in outputs
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// FormatEntry renders one entry in long format: type marker, size,
// modification time, name and optional description
func FormatEntry(e listing.FileEntry) string {
	kind := "-"
	if e.IsDir() {
		kind = "d"
	}

	size := "-"
	if e.HasSize() {
		size = fmt.Sprintf("%d", e.Size)
	}

	modified := "-"
	if e.HasModified() {
		modified = e.Modified.Format("2006-01-02 15:04")
	}

	line := fmt.Sprintf("%s %12s  %-16s  %s", kind, size, modified, e.Name)
	if e.Description != "" {
		line += "  # " + e.Description
	}
	return line
}

// FormatListing renders a whole listing, one entry per line. Long format
// carries metadata columns; otherwise only names are printed.
func FormatListing(dir string, entries []listing.FileEntry, long bool) string {
	var b strings.Builder
	if dir != "" {
		fmt.Fprintf(&b, "%s:\n", dir)
	}
	for _, e := range entries {
		if long {
			b.WriteString(FormatEntry(e))
		} else {
			b.WriteString(e.Name)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// jsonEntry is the marshal-friendly view of a FileEntry with nullable
// optional fields
type jsonEntry struct {
	Name        string     `json:"name"`
	Dir         bool       `json:"dir"`
	Modified    *time.Time `json:"modified,omitempty"`
	Size        *int64     `json:"size,omitempty"`
	Description string     `json:"description,omitempty"`
}

type jsonListing struct {
	Directory string      `json:"directory,omitempty"`
	Entries   []jsonEntry `json:"entries"`
}

// FormatJSON renders a listing as indented JSON
func FormatJSON(dir string, entries []listing.FileEntry) (string, error) {
	out := jsonListing{Directory: dir, Entries: make([]jsonEntry, 0, len(entries))}
	for _, e := range entries {
		je := jsonEntry{
			Name:        e.Name,
			Dir:         e.IsDir(),
			Description: e.Description,
		}
		if e.HasModified() {
			t := e.Modified
			je.Modified = &t
		}
		if e.HasSize() {
			s := e.Size
			je.Size = &s
		}
		out.Entries = append(out.Entries, je)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode listing: %w", err)
	}
	return string(data), nil
}

// FormatSummary creates a summary of a mirror run
func FormatSummary(
	rootURL string,
	dirsVisited int,
	filesFound int,
	filesDownloaded int,
	filesSkipped int,
	filesFiltered int,
	bytesDownloaded int64,
	writeErrors int,
	startTime time.Time,
	endTime time.Time,
) string {
	duration := endTime.Sub(startTime)

	summary := strings.Builder{}
	summary.WriteString("=== httpls Mirror Summary ===\n")
	summary.WriteString(fmt.Sprintf("Root URL: %s\n", rootURL))
	summary.WriteString(fmt.Sprintf("Start time: %s\n", FormatTimestamp(startTime)))
	summary.WriteString(fmt.Sprintf("End time: %s\n", FormatTimestamp(endTime)))
	summary.WriteString(fmt.Sprintf("Duration: %s\n", duration.Round(time.Second)))
	summary.WriteString(fmt.Sprintf("Directories visited: %d\n", dirsVisited))
	summary.WriteString(fmt.Sprintf("Files found: %d\n", filesFound))
	summary.WriteString(fmt.Sprintf("Files downloaded: %d\n", filesDownloaded))
	summary.WriteString(fmt.Sprintf("Files skipped: %d\n", filesSkipped))
	summary.WriteString(fmt.Sprintf("Files filtered out: %d\n", filesFiltered))
	summary.WriteString(fmt.Sprintf("Bytes downloaded: %d\n", bytesDownloaded))
	if writeErrors > 0 {
		summary.WriteString(fmt.Sprintf("Write errors: %d\n", writeErrors))
	}
	summary.WriteString("=============================\n")

	return summary.String()
}
