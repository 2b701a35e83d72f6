package httpfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"
)

// fileInfo adapts a metadata snapshot to fs.FileInfo
type fileInfo struct {
	meta fileMeta
}

func (fi fileInfo) Name() string { return fi.meta.name }

func (fi fileInfo) Size() int64 {
	if fi.meta.size < 0 {
		return 0
	}
	return fi.meta.size
}

func (fi fileInfo) Mode() fs.FileMode {
	if fi.meta.isDir {
		return fs.ModeDir | 0555
	}
	return 0444
}

func (fi fileInfo) ModTime() time.Time { return fi.meta.modTime }
func (fi fileInfo) IsDir() bool        { return fi.meta.isDir }
func (fi fileInfo) Sys() any           { return nil }

// dirEntry adapts a metadata snapshot to fs.DirEntry
type dirEntry struct {
	meta fileMeta
}

func (de dirEntry) Name() string { return de.meta.name }
func (de dirEntry) IsDir() bool  { return de.meta.isDir }

func (de dirEntry) Type() fs.FileMode {
	if de.meta.isDir {
		return fs.ModeDir
	}
	return 0
}

func (de dirEntry) Info() (fs.FileInfo, error) { return fileInfo{de.meta}, nil }

// fileHandle is an open remote file. Reads go out as range requests; when
// the server ignores ranges the first full-body response is kept and
// streamed sequentially instead.
type fileHandle struct {
	fsys *FS
	path string
	url  string
	meta fileMeta

	offset int64
	stream io.ReadCloser // full-body fallback, nil while ranges work
	closed bool
}

func (f *fileHandle) Stat() (fs.FileInfo, error) {
	return fileInfo{f.meta}, nil
}

func (f *fileHandle) Read(p []byte) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.path, Err: fs.ErrClosed}
	}
	if len(p) == 0 {
		return 0, nil
	}
	if f.meta.size >= 0 && f.offset >= f.meta.size {
		return 0, io.EOF
	}

	if f.stream != nil {
		n, err := f.stream.Read(p)
		f.offset += int64(n)
		return n, err
	}

	body, ranged, err := f.fsys.client.ReadRange(context.Background(), f.url, f.offset, int64(len(p)))
	if err != nil {
		return 0, &fs.PathError{Op: "read", Path: f.path, Err: mapFetchErr(err)}
	}

	if !ranged {
		// server sent the whole file; only usable from the start
		if f.offset != 0 {
			body.Close()
			return 0, &fs.PathError{Op: "read", Path: f.path, Err: errors.New("server does not support range requests")}
		}
		f.stream = body
		n, err := f.stream.Read(p)
		f.offset += int64(n)
		return n, err
	}

	defer body.Close()
	n, err := io.ReadFull(body, p)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		// short range at the end of the file
		err = nil
		if n == 0 {
			err = io.EOF
		}
	}
	f.offset += int64(n)
	return n, err
}

// Seek implements io.Seeker. Seeking discards any full-body stream, so it
// only works against servers that honor range requests.
func (f *fileHandle) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "seek", Path: f.path, Err: fs.ErrClosed}
	}

	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = f.offset + offset
	case io.SeekEnd:
		if f.meta.size < 0 {
			return 0, &fs.PathError{Op: "seek", Path: f.path, Err: errors.New("size unknown")}
		}
		next = f.meta.size + offset
	default:
		return 0, &fs.PathError{Op: "seek", Path: f.path, Err: fs.ErrInvalid}
	}
	if next < 0 {
		return 0, &fs.PathError{Op: "seek", Path: f.path, Err: fs.ErrInvalid}
	}

	if f.stream != nil && next != f.offset {
		f.stream.Close()
		f.stream = nil
	}
	f.offset = next
	return next, nil
}

func (f *fileHandle) Close() error {
	if f.closed {
		return &fs.PathError{Op: "close", Path: f.path, Err: fs.ErrClosed}
	}
	f.closed = true
	if f.stream != nil {
		err := f.stream.Close()
		f.stream = nil
		return err
	}
	return nil
}

// dirHandle is an open directory. Reads fail; ReadDir pages through the
// cached listing.
type dirHandle struct {
	fsys *FS
	path string
	meta fileMeta

	pos    int
	closed bool
}

func (d *dirHandle) Stat() (fs.FileInfo, error) {
	return fileInfo{d.meta}, nil
}

func (d *dirHandle) Read(p []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: errors.New("is a directory")}
}

func (d *dirHandle) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.closed {
		return nil, &fs.PathError{Op: "readdir", Path: d.path, Err: fs.ErrClosed}
	}

	node, err := d.fsys.loadDir(d.path)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: d.path, Err: err}
	}

	remaining := len(node.entries) - d.pos
	if remaining <= 0 {
		if n <= 0 {
			return nil, nil
		}
		return nil, io.EOF
	}
	if n <= 0 || n > remaining {
		n = remaining
	}

	entries := make([]fs.DirEntry, 0, n)
	for _, meta := range node.entries[d.pos : d.pos+n] {
		entries = append(entries, dirEntry{d.fsys.snapshot(meta)})
	}
	d.pos += n
	return entries, nil
}

func (d *dirHandle) Close() error {
	if d.closed {
		return &fs.PathError{Op: "close", Path: d.path, Err: fs.ErrClosed}
	}
	d.closed = true
	return nil
}
