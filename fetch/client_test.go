package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"httpls/logging"
)

const content = "0123456789abcdef"

func contentReader() *strings.Reader { return strings.NewReader(content) }

func timeZero() time.Time { return time.Unix(1682518200, 0) }

const indexPage = `<html><head><title>Index of /data</title></head><body><pre><a href="a.bin">a.bin</a>  2023-04-26 14:10  1K
<a href="sub/">sub/</a>  2023-04-26 14:09  -
</pre></body></html>`

func testServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Last-Modified", "Wed, 26 Apr 2023 14:10:00 GMT")
		io.WriteString(w, indexPage)
	})
	mux.HandleFunc("/data/a.bin", func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "a.bin", timeZero(), contentReader())
	})
	mux.HandleFunc("/data/sub", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/data/sub/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/data/tmp", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/data/tmp/", http.StatusTemporaryRedirect)
	})
	return httptest.NewServer(mux)
}

func TestFetchListing(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	client := NewClient(5, "httpls-test", logging.NewLogger())
	page, dir, entries, err := client.FetchListing(context.Background(), srv.URL+"/data/")
	if err != nil {
		t.Fatalf("FetchListing: %v", err)
	}
	if dir != "/data" {
		t.Errorf("dir = %q", dir)
	}
	if len(entries) != 2 || entries[0].Name != "a.bin" || entries[1].Name != "sub/" {
		t.Errorf("entries = %v", entries)
	}
	if page.BaseURL.Path != "/data/" {
		t.Errorf("base URL = %v", page.BaseURL)
	}
	if page.LastModified.IsZero() {
		t.Error("page Last-Modified not captured")
	}
}

func TestFetchRejectsNonHTML(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/blob", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0, 1, 2})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(5, "httpls-test", logging.NewLogger())
	if _, err := client.Fetch(context.Background(), srv.URL+"/blob"); err == nil {
		t.Fatal("Fetch accepted a binary body")
	}
}

func TestStat(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	client := NewClient(5, "httpls-test", logging.NewLogger())

	info, err := client.Stat(context.Background(), srv.URL+"/data/a.bin")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", info.Size, len(content))
	}
	if !info.RangeSupport {
		t.Error("range support not detected")
	}

	info, err = client.Stat(context.Background(), srv.URL+"/data/sub")
	if err != nil {
		t.Fatalf("Stat redirect: %v", err)
	}
	if !info.IsDirRedirect {
		t.Errorf("directory redirect not detected: %+v", info)
	}

	// any redirect class to the slash form means a directory
	info, err = client.Stat(context.Background(), srv.URL+"/data/tmp")
	if err != nil {
		t.Fatalf("Stat 307 redirect: %v", err)
	}
	if !info.IsDirRedirect {
		t.Errorf("307 directory redirect not detected: %+v", info)
	}
}

func TestReadRange(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	client := NewClient(5, "httpls-test", logging.NewLogger())
	body, partial, err := client.ReadRange(context.Background(), srv.URL+"/data/a.bin", 2, 3)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !partial {
		t.Error("expected a partial-content response")
	}
	if string(data) != content[2:5] {
		t.Errorf("range body = %q, want %q", data, content[2:5])
	}
}
