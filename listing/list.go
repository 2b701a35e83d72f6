package listing

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractList walks the bare-bones layout used by minimal servers such as
// darkhttpd: list items wrapping one link each, no metadata beyond the name.
func extractList(list *goquery.Selection) []FileEntry {
	var entries []FileEntry
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		anchors := li.Find("a[href]")
		if anchors.Length() != 1 {
			return
		}
		a := anchors.First()
		href, _ := a.Attr("href")

		name := strings.TrimSpace(a.Text())
		if name == "" {
			if unescaped, err := url.PathUnescape(href); err == nil {
				name = unescaped
			} else {
				name = href
			}
		}

		if isNavLink(name, href) || reAbsPath.MatchString(href) {
			return
		}
		if name == "" {
			return
		}
		// keep the directory marker even when the visible text drops it
		if strings.HasSuffix(href, "/") && !strings.HasSuffix(name, "/") {
			name += "/"
		}

		entries = append(entries, FileEntry{Name: name, Size: SizeUnknown})
	})
	return entries
}
