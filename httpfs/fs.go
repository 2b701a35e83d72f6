// Package httpfs exposes a remote HTML directory listing as a read-only
// io/fs filesystem. Directory metadata comes from parsed listing pages and
// is cached; file sizes the listing did not carry are probed lazily with
// HEAD requests, and file reads are served through HTTP range requests.
package httpfs

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"path"
	"sync"
	"time"

	"httpls/fetch"
	"httpls/logging"
)

// FS is a read-only filesystem backed by a remote autoindex tree
type FS struct {
	base   *url.URL
	client *fetch.Client
	logger *logging.Logger

	mu   sync.Mutex
	dirs map[string]*dirNode
}

// dirNode is one cached directory listing
type dirNode struct {
	modTime time.Time
	entries []*fileMeta
}

// fileMeta is cached metadata for one remote file or directory
type fileMeta struct {
	name     string // basename without trailing slash
	isDir    bool
	size     int64 // -1 until known
	modTime  time.Time
	statDone bool
}

// New creates a filesystem rooted at baseURL, which must point at a listing
// page. A trailing slash is added when missing.
func New(baseURL string, client *fetch.Client, logger *logging.Logger) (*FS, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
	}
	return &FS{
		base:   u,
		client: client,
		logger: logger,
		dirs:   make(map[string]*dirNode),
	}, nil
}

// urlFor builds the remote URL for an fs path. Directories get a trailing
// slash so the server serves the listing instead of a redirect.
func (fsys *FS) urlFor(name string, dir bool) string {
	u := *fsys.base
	if name != "." {
		joined := fsys.base.JoinPath(name)
		u = *joined
	}
	if dir && (u.Path == "" || u.Path[len(u.Path)-1] != '/') {
		u.Path += "/"
	}
	return u.String()
}

// loadDir fetches and caches the listing for an fs directory path
func (fsys *FS) loadDir(name string) (*dirNode, error) {
	fsys.mu.Lock()
	if node, ok := fsys.dirs[name]; ok {
		fsys.mu.Unlock()
		return node, nil
	}
	fsys.mu.Unlock()

	page, _, entries, err := fsys.client.FetchListing(context.Background(), fsys.urlFor(name, true))
	if err != nil {
		return nil, mapFetchErr(err)
	}

	node := &dirNode{modTime: page.LastModified}
	seen := make(map[string]bool)
	for _, e := range entries {
		base := path.Base("/" + e.Name) // entry names are already basenames
		if base == "/" || base == "." || seen[base] {
			continue
		}
		seen[base] = true

		meta := &fileMeta{
			name:    base,
			isDir:   e.IsDir(),
			size:    -1,
			modTime: e.Modified,
		}
		if e.HasSize() {
			meta.size = e.Size
			meta.statDone = true
		}
		if meta.isDir {
			meta.size = 0
			meta.statDone = true
		}
		if meta.modTime.IsZero() {
			// fall back to the page's own timestamp, like a real mount would
			meta.modTime = page.LastModified
		}
		node.entries = append(node.entries, meta)
	}

	fsys.mu.Lock()
	fsys.dirs[name] = node
	fsys.mu.Unlock()

	fsys.logger.Debug("Cached directory %s with %d entries", name, len(node.entries))
	return node, nil
}

// lookup finds the metadata for a path via its parent's listing. Unknown
// paths are probed directly, so files a broken listing omits still resolve.
func (fsys *FS) lookup(name string) (*fileMeta, error) {
	if name == "." {
		node, err := fsys.loadDir(".")
		if err != nil {
			return nil, err
		}
		return &fileMeta{name: ".", isDir: true, size: 0, modTime: node.modTime, statDone: true}, nil
	}

	parent := path.Dir(name)
	base := path.Base(name)

	node, err := fsys.loadDir(parent)
	if err == nil {
		for _, meta := range node.entries {
			if meta.name == base {
				return meta, nil
			}
		}
	}

	// not listed; probe the URL itself
	info, err := fsys.client.Stat(context.Background(), fsys.urlFor(name, false))
	if err != nil {
		return nil, err
	}
	switch {
	case info.IsDirRedirect:
		return &fileMeta{name: base, isDir: true, size: 0, modTime: info.Modified, statDone: true}, nil
	case info.StatusCode == 404 || info.StatusCode == 410:
		return nil, fs.ErrNotExist
	case info.StatusCode == 401 || info.StatusCode == 403:
		return nil, fs.ErrPermission
	case info.StatusCode != 200:
		return nil, &fetch.StatusError{Code: info.StatusCode}
	}
	return &fileMeta{name: base, size: info.Size, modTime: info.Modified, statDone: true}, nil
}

// stat fills in missing size information with a HEAD probe
func (fsys *FS) stat(name string, meta *fileMeta) error {
	fsys.mu.Lock()
	done := meta.statDone
	fsys.mu.Unlock()
	if done {
		return nil
	}

	info, err := fsys.client.Stat(context.Background(), fsys.urlFor(name, false))
	if err != nil {
		return err
	}

	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	if info.StatusCode == 200 {
		meta.size = info.Size
		if meta.modTime.IsZero() {
			meta.modTime = info.Modified
		}
	}
	meta.statDone = true
	return nil
}

// Open implements fs.FS
func (fsys *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	meta, err := fsys.lookup(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	if meta.isDir {
		return &dirHandle{fsys: fsys, path: name, meta: fsys.snapshot(meta)}, nil
	}

	if err := fsys.stat(name, meta); err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &fileHandle{
		fsys: fsys,
		path: name,
		url:  fsys.urlFor(name, false),
		meta: fsys.snapshot(meta),
	}, nil
}

// ReadDir implements fs.ReadDirFS
func (fsys *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	if name != "." {
		meta, err := fsys.lookup(name)
		if err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
		}
		if !meta.isDir {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
		}
	}

	node, err := fsys.loadDir(name)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}

	entries := make([]fs.DirEntry, 0, len(node.entries))
	for _, meta := range node.entries {
		entries = append(entries, dirEntry{fsys.snapshot(meta)})
	}
	return entries, nil
}

// Stat implements fs.StatFS
func (fsys *FS) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	meta, err := fsys.lookup(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	if !meta.isDir {
		if err := fsys.stat(name, meta); err != nil {
			return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
		}
	}
	return fileInfo{fsys.snapshot(meta)}, nil
}

// snapshot copies cached metadata under the lock. Handles and infos carry
// the copy, so a concurrent HEAD probe updating the cache never races a read.
func (fsys *FS) snapshot(meta *fileMeta) fileMeta {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	return *meta
}

// Refresh drops the cached listing for a directory so the next access
// refetches it
func (fsys *FS) Refresh(name string) {
	fsys.mu.Lock()
	delete(fsys.dirs, name)
	fsys.mu.Unlock()
}

// mapFetchErr converts HTTP status failures into fs sentinel errors
func mapFetchErr(err error) error {
	var se *fetch.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case 404, 410:
			return fs.ErrNotExist
		case 401, 403:
			return fs.ErrPermission
		}
	}
	return err
}
