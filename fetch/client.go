// Package fetch retrieves autoindex pages and file metadata over HTTP for
// the listing parser and its consumers.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"httpls/listing"
	"httpls/logging"
)

// Client handles HTTP requests against listing servers
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *logging.Logger
}

// Page is a fetched and parsed listing page
type Page struct {
	// BaseURL is the final request URL, after redirects; relative links in
	// the listing resolve against it
	BaseURL *url.URL
	// Document is the parsed page
	Document *goquery.Document
	// LastModified is the page's own Last-Modified header, zero when absent
	LastModified time.Time
}

// FileInfo describes a remote file probed via HEAD
type FileInfo struct {
	Size          int64 // -1 when the server sent no Content-Length
	Modified      time.Time
	RangeSupport  bool
	IsDirRedirect bool // 3xx pointing at the slash form of the same path
	StatusCode    int
}

// StatusError reports a non-OK HTTP response
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Code)
}

// NewClient creates a new fetch client
func NewClient(timeoutSeconds int, userAgent string, logger *logging.Logger) *Client {
	client := &http.Client{
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}

	return &Client{
		httpClient: client,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Fetch retrieves a URL and parses the body as HTML
func (c *Client) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	c.logger.Debug("Fetching listing page: %s", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	ctype := resp.Header.Get("Content-Type")
	if ctype != "" && !strings.Contains(ctype, "html") && !strings.Contains(ctype, "xml") {
		return nil, fmt.Errorf("not an HTML page: Content-Type %s", ctype)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &Page{
		BaseURL:  resp.Request.URL,
		Document: doc,
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			page.LastModified = t
		}
	}
	return page, nil
}

// FetchListing fetches a URL and extracts its directory listing
func (c *Client) FetchListing(ctx context.Context, pageURL string) (*Page, string, []listing.FileEntry, error) {
	page, err := c.Fetch(ctx, pageURL)
	if err != nil {
		return nil, "", nil, err
	}
	dir, entries, err := listing.Parse(page.Document)
	if err != nil {
		return nil, "", nil, err
	}
	c.logger.Debug("Parsed %d entries from %s", len(entries), pageURL)
	return page, dir, entries, nil
}

// Stat probes a file URL with a HEAD request. Redirects are not followed so
// a file-to-directory redirect can be reported to the caller.
func (c *Client) Stat(ctx context.Context, fileURL string) (*FileInfo, error) {
	c.logger.Debug("Probing file: %s", fileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	// probe without following redirects
	noRedirect := *c.httpClient
	noRedirect.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := noRedirect.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to probe file: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	info := &FileInfo{Size: -1, StatusCode: resp.StatusCode}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		loc := resp.Header.Get("Location")
		if strings.HasSuffix(loc, "/") || loc == "" {
			info.IsDirRedirect = true
		}
		return info, nil
	}
	if resp.StatusCode != http.StatusOK {
		return info, nil
	}

	if resp.ContentLength >= 0 {
		info.Size = resp.ContentLength
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			info.Modified = t
		}
	}
	info.RangeSupport = resp.Header.Get("Accept-Ranges") == "bytes"

	return info, nil
}

// ReadRange requests a byte range of a remote file. When the server ignores
// the range, ok is false and the caller gets the full body instead.
func (c *Client) ReadRange(ctx context.Context, fileURL string, offset, length int64) (body io.ReadCloser, ok bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read range: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
		return resp.Body, true, nil
	case http.StatusOK:
		return resp.Body, false, nil
	default:
		resp.Body.Close()
		return nil, false, &StatusError{Code: resp.StatusCode}
	}
}

// Download streams a remote file into w and returns the byte count
func (c *Client) Download(ctx context.Context, fileURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{Code: resp.StatusCode}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read body: %w", err)
	}
	return n, nil
}

// setHeaders sets the headers used on every request
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
}
