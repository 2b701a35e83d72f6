package listing

import (
	"strings"
	"time"
)

// SizeUnknown marks an entry whose byte count was absent or unparseable
const SizeUnknown int64 = -1

// FileEntry is one file or sub-directory extracted from a listing page
type FileEntry struct {
	Name        string    // basename; keeps a trailing "/" for directories
	Modified    time.Time // zero when the page showed no recognizable timestamp
	Size        int64     // SizeUnknown when the page showed no byte count
	Description string    // trailing label text, empty when absent
}

// IsDir reports whether the entry denotes a sub-directory
func (e FileEntry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// HasModified reports whether a modification time was extracted
func (e FileEntry) HasModified() bool {
	return !e.Modified.IsZero()
}

// HasSize reports whether a byte count was extracted
func (e FileEntry) HasSize() bool {
	return e.Size != SizeUnknown
}
