// Package listing extracts structured directory listings from web-server
// autoindex pages (Apache, nginx, lighttpd, darkhttpd and similar themes).
//
// Parsing is best effort by design: individual rows that cannot be
// understood degrade to missing fields or are skipped, and a page with no
// recognizable layout yields an empty listing rather than an error.
package listing

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Layout is one recognizable autoindex page structure. Detect returns the
// container element the extractor should walk.
type Layout struct {
	Name    string
	Detect  func(*goquery.Document) (*goquery.Selection, bool)
	Extract func(*goquery.Selection) []FileEntry
}

// Layouts is the detection order applied by Parse; first match wins. Tables
// are preferred because fancy-index themes wrap a <pre> fallback around their
// real table markup.
var Layouts = []Layout{
	{Name: "table", Detect: detectTable, Extract: extractTable},
	{Name: "pre", Detect: detectPre, Extract: extractPre},
	{Name: "list", Detect: detectList, Extract: extractList},
}

// Parse extracts the current directory and the file entries from a parsed
// autoindex document. An unrecognized page yields ("", nil, nil); the only
// error is a nil document.
func Parse(doc *goquery.Document) (string, []FileEntry, error) {
	if doc == nil {
		return "", nil, fmt.Errorf("listing: nil document")
	}

	dir := currentDir(doc)

	for _, layout := range Layouts {
		root, ok := layout.Detect(doc)
		if !ok {
			continue
		}
		entries := layout.Extract(root)
		if entries == nil {
			// a recognized but empty directory is still a listing
			entries = []FileEntry{}
		}
		return dir, entries, nil
	}

	return dir, nil, nil
}

// currentDir derives the path the page describes from its title or heading,
// conventionally "Index of /some/path". Empty when undeterminable.
func currentDir(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if rest, ok := strings.CutPrefix(title, "Index of "); ok {
		return rest
	}
	h1 := strings.TrimSpace(doc.Find("h1").First().Text())
	if rest, ok := strings.CutPrefix(h1, "Index of "); ok {
		return rest
	}
	return ""
}

// detectTable picks the first table whose rows look like listing rows:
// multiple cells with a name-bearing link in one of them.
func detectTable(doc *goquery.Document) (*goquery.Selection, bool) {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		looksLikeListing := false
		tbl.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			cells := row.ChildrenFiltered("td")
			if cells.Length() >= 2 && hasNamedLink(cells) {
				looksLikeListing = true
				return false
			}
			return true
		})
		if looksLikeListing {
			found = tbl
			return false
		}
		return true
	})
	return found, found != nil
}

// detectPre picks the first pre block containing a text-bearing anchor
// (the classic raw-text autoindex layout).
func detectPre(doc *goquery.Document) (*goquery.Selection, bool) {
	var found *goquery.Selection
	doc.Find("pre").EachWithBreak(func(_ int, pre *goquery.Selection) bool {
		if hasNamedLink(pre) {
			found = pre
			return false
		}
		return true
	})
	return found, found != nil
}

// detectList picks the first ul whose items wrap links.
func detectList(doc *goquery.Document) (*goquery.Selection, bool) {
	var found *goquery.Selection
	doc.Find("ul").EachWithBreak(func(_ int, ul *goquery.Selection) bool {
		if ul.Find("li a[href]").Length() > 0 {
			found = ul
			return false
		}
		return true
	})
	return found, found != nil
}

// hasNamedLink reports whether the selection contains an anchor with both a
// target and visible text.
func hasNamedLink(sel *goquery.Selection) bool {
	ok := false
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != "" {
			ok = true
			return false
		}
		return true
	})
	return ok
}
