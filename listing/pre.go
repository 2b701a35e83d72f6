package listing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// extractPre walks the raw-text layout: each entry is an anchor followed by
// loosely padded modification-time and size tokens in the trailing text, with
// an optional description after the size. Apache prints a <hr> above the
// rows; when present the listing proper starts after it.
func extractPre(pre *goquery.Selection) []FileEntry {
	var entries []FileEntry
	var cur *FileEntry

	flush := func() {
		if cur != nil && cur.Name != "" {
			entries = append(entries, *cur)
		}
		cur = nil
	}

	node := pre.Nodes[0].FirstChild
	if hr := childElement(pre.Nodes[0], "hr"); hr != nil {
		node = hr.NextSibling
	}

	for ; node != nil; node = node.NextSibling {
		switch {
		case node.Type == html.ElementNode && node.Data == "a":
			label := nodeText(node)
			if strings.TrimSpace(label) == "" {
				continue
			}
			flush()
			href := attrValue(node, "href")
			if isNavLink(label, href) {
				continue
			}
			name := hrefToName(href)
			if name == "" {
				continue
			}
			cur = &FileEntry{Name: name, Size: SizeUnknown}

		case node.Type == html.TextNode:
			if cur == nil {
				continue
			}
			// only the first physical line belongs to this entry
			line, _, _ := strings.Cut(strings.ReplaceAll(node.Data, "\r", ""), "\n")
			line = strings.TrimLeft(line, " \t")
			if t, rest, ok := TakeTime(line); ok {
				cur.Modified = t
				line = strings.TrimLeft(rest, " \t")
			}
			if size, rest, ok := TakeSize(line); ok {
				cur.Size = size
				line = strings.TrimLeft(rest, " \t")
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			// mod_autoindex prints a bare "/" after directory names
			if line == "/" && !cur.IsDir() {
				cur.Name += "/"
				continue
			}
			if cur.Description == "" {
				cur.Description = line
			}
		}
	}
	flush()

	return entries
}

// childElement returns the first direct child element with the given tag
func childElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

// attrValue returns the value of the named attribute, or ""
func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// nodeText concatenates all text nodes under n
func nodeText(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}
