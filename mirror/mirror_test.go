package mirror

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"httpls/config"
	"httpls/fetch"
	"httpls/filter"
	"httpls/logging"
	"httpls/output"
)

const rootPage = `<html><head><title>Index of /</title></head><body><pre><a href="a.txt">a.txt</a>  2023-04-26 14:10  5
<a href="notes.pdf">notes.pdf</a>  2023-04-26 14:10  8
<a href="sub/">sub/</a>  2023-04-26 14:09  -
</pre></body></html>`

const subPage = `<html><head><title>Index of /sub</title></head><body><pre><a href="b.txt">b.txt</a>  2023-04-26 14:08  5
</pre></body></html>`

var files = map[string]string{
	"/a.txt":     "alpha",
	"/notes.pdf": "%PDF-1.4",
	"/sub/b.txt": "bravo",
}

func testServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, rootPage)
			return
		}
		if body, ok := files[r.URL.Path]; ok {
			io.WriteString(w, body)
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/sub/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sub/" {
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, subPage)
			return
		}
		if body, ok := files[r.URL.Path]; ok {
			io.WriteString(w, body)
			return
		}
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func newTestMirror(t *testing.T, outputDir string, rules []string, maxDepth int) (*Mirror, *output.Writer) {
	t.Helper()
	logger := logging.NewLogger()

	cfg := config.Default()
	cfg.OutputDir = outputDir
	cfg.MaxDepth = maxDepth
	cfg.MaxConcurrentRequests = 2
	cfg.PreserveModTime = true

	writer, err := output.NewWriter(outputDir, logger)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	client := fetch.NewClient(5, "httpls-test", logger)
	return New(client, filter.NewFilter(rules, logger), writer, logger, cfg), writer
}

func TestRunMirrorsTree(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	dir := t.TempDir()
	m, writer := newTestMirror(t, dir, nil, 2)

	if err := m.Run(context.Background(), srv.URL+"/"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for rel, want := range map[string]string{
		"a.txt":     "alpha",
		"notes.pdf": "%PDF-1.4",
		"sub/b.txt": "bravo",
	} {
		data, err := os.ReadFile(filepath.Join(dir, "files", filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", rel, data, want)
		}
	}

	manifest, err := os.ReadFile(filepath.Join(dir, "manifest.txt"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	for _, rel := range []string{"a.txt", "notes.pdf", "sub/b.txt"} {
		if !strings.Contains(string(manifest), rel) {
			t.Errorf("manifest missing %s", rel)
		}
	}

	dirs, found, downloaded, skipped, filtered, bytes, writeErrors := m.GetStats()
	if dirs != 2 || found != 3 || downloaded != 3 {
		t.Errorf("stats = dirs %d found %d downloaded %d", dirs, found, downloaded)
	}
	if skipped != 0 || filtered != 0 || writeErrors != 0 {
		t.Errorf("stats = skipped %d filtered %d writeErrors %d", skipped, filtered, writeErrors)
	}
	if bytes != int64(len("alpha")+len("%PDF-1.4")+len("bravo")) {
		t.Errorf("bytes = %d", bytes)
	}
}

func TestRunSkipsExistingFiles(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	dir := t.TempDir()

	m, writer := newTestMirror(t, dir, nil, 2)
	if err := m.Run(context.Background(), srv.URL+"/"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	writer.Close()

	m, writer = newTestMirror(t, dir, nil, 2)
	if err := m.Run(context.Background(), srv.URL+"/"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	writer.Close()

	_, _, downloaded, skipped, _, _, _ := m.GetStats()
	if downloaded != 0 || skipped != 3 {
		t.Errorf("second run downloaded %d skipped %d, want 0/3", downloaded, skipped)
	}
}

func TestRunAppliesFilter(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	dir := t.TempDir()
	m, writer := newTestMirror(t, dir, []string{".pdf"}, 2)

	if err := m.Run(context.Background(), srv.URL+"/"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	writer.Close()

	if _, err := os.Stat(filepath.Join(dir, "files", "notes.pdf")); err != nil {
		t.Errorf("notes.pdf not downloaded: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "files", "a.txt")); !os.IsNotExist(err) {
		t.Errorf("a.txt should have been filtered out")
	}

	_, _, downloaded, _, filtered, _, _ := m.GetStats()
	if downloaded != 1 || filtered != 2 {
		t.Errorf("downloaded %d filtered %d, want 1/2", downloaded, filtered)
	}
}

func TestRunHonorsDepthLimit(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	dir := t.TempDir()
	m, writer := newTestMirror(t, dir, nil, 1)

	if err := m.Run(context.Background(), srv.URL+"/"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	writer.Close()

	if _, err := os.Stat(filepath.Join(dir, "files", "sub", "b.txt")); !os.IsNotExist(err) {
		t.Error("depth limit not honored, sub/b.txt was downloaded")
	}

	dirs, _, downloaded, _, _, _, _ := m.GetStats()
	if dirs != 1 || downloaded != 2 {
		t.Errorf("dirs %d downloaded %d, want 1/2", dirs, downloaded)
	}
}
