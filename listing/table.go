package listing

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// extractTable walks a table layout row by row. Column order and count vary
// wildly across server themes, so cells are classified by content shape
// (date-like, size-like, else description) instead of by position.
func extractTable(tbl *goquery.Selection) []FileEntry {
	var entries []FileEntry
	tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if !isDataRow(row) {
			return
		}
		if entry, ok := rowEntry(row); ok {
			entries = append(entries, entry)
		}
	})
	return entries
}

// isDataRow filters out header and footer rows
func isDataRow(row *goquery.Selection) bool {
	if row.ChildrenFiltered("th").Length() > 0 {
		return false
	}
	switch goquery.NodeName(row.Parent()) {
	case "thead", "tfoot":
		return false
	}
	return true
}

// rowEntry turns one data row into an entry. Rows without a usable anchor,
// and rows whose anchor is a parent-directory or sort-control link, are
// skipped.
func rowEntry(row *goquery.Selection) (FileEntry, bool) {
	entry := FileEntry{Size: SizeUnknown}
	skipRow := false
	nameIdx := -1

	cells := row.ChildrenFiltered("td")
	cells.EachWithBreak(func(i int, cell *goquery.Selection) bool {
		a := cell.Find("a[href]").First()
		if a.Length() == 0 {
			return true
		}
		label := a.Text()
		href, _ := a.Attr("href")
		if strings.TrimSpace(label) == "" || href == "" || strings.HasPrefix(href, "#") {
			// icon or in-page link, keep hunting for the name cell
			return true
		}
		if isNavLink(label, href) {
			skipRow = true
			return false
		}
		if name := hrefToName(href); name != "" {
			entry.Name = name
			nameIdx = i
			return false
		}
		return true
	})
	if skipRow || entry.Name == "" {
		return FileEntry{}, false
	}

	var state rowState
	cells.Each(func(i int, cell *goquery.Selection) {
		if i == nameIdx {
			return
		}
		classifyCell(cell, &entry, &state)
	})

	return entry, true
}

// rowState remembers which slots a row has already claimed; a "-" size cell
// claims the slot without yielding a byte count
type rowState struct {
	timeSeen bool
	sizeSeen bool
}

// classifyCell assigns one non-name cell to the modified, size or
// description field, first shape match wins. The last non-empty leftover
// cell wins the description slot.
func classifyCell(cell *goquery.Selection, entry *FileEntry, state *rowState) {
	// machine-readable timestamp beats text guessing
	if !state.timeSeen {
		if dt, ok := cell.Find("time").First().Attr("datetime"); ok && reISO8601.MatchString(dt) {
			if t, err := time.Parse("2006-1-2T15:04:05Z", reISO8601.FindString(dt)); err == nil {
				entry.Modified = t
				state.timeSeen = true
				return
			}
		}
	}

	text := strings.TrimSpace(cell.Text())

	if !state.timeSeen {
		if t, ok := ParseTime(text); ok {
			entry.Modified = t
			state.timeSeen = true
			return
		}
		// fancy-index themes carry the raw epoch in a sort attribute
		if sv, ok := cell.Attr("data-sort-value"); ok && text != "" {
			if epoch, err := strconv.ParseInt(sv, 10, 64); err == nil && epoch > 0 && !isSizeField(text) {
				entry.Modified = time.Unix(epoch, 0).UTC()
				state.timeSeen = true
				return
			}
		}
	}

	if !state.sizeSeen && isSizeField(text) {
		state.sizeSeen = true
		if sv, ok := cell.Attr("data-sort-value"); ok {
			if exact, err := strconv.ParseInt(sv, 10, 64); err == nil && exact >= 0 {
				entry.Size = exact
				return
			}
		}
		entry.Size = ParseSize(text)
		return
	}

	if text != "" {
		entry.Description = text
	}
}

// isSizeField reports whether a whole cell reads as a size field,
// "-" placeholder included
func isSizeField(text string) bool {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return false
	}
	return sizeToken.FindString(text) == text
}
