package listing

import (
	"math"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeFormat pairs a prefix pattern with the Go layout that parses its match.
// The patterns bound the token so the remainder of a pre-layout line can be
// handed on to the size parser.
type timeFormat struct {
	re     *regexp.Regexp
	layout string
}

// timeFormats is tried in order; formats carrying seconds come before their
// truncated variants so the longest token wins.
var timeFormats = []timeFormat{
	{regexp.MustCompile(`^\d{1,2}-[A-S][a-y]{2}-\d{4} \d{1,2}:\d{2}:\d{2}`), "2-Jan-2006 15:04:05"},
	{regexp.MustCompile(`^\d{1,2}-[A-S][a-y]{2}-\d{4} \d{1,2}:\d{2}`), "2-Jan-2006 15:04"},
	{regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2} \d{1,2}:\d{2}:\d{2}`), "2006-1-2 15:04:05"},
	{regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}T\d{1,2}:\d{2}:\d{2}Z`), "2006-1-2T15:04:05Z"},
	{regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2} \d{1,2}:\d{2}`), "2006-1-2 15:04"},
	{regexp.MustCompile(`^\d{4}-[A-S][a-y]{2}-\d{1,2} \d{1,2}:\d{2}:\d{2}`), "2006-Jan-2 15:04:05"},
	{regexp.MustCompile(`^\d{4}-[A-S][a-y]{2}-\d{1,2} \d{1,2}:\d{2}`), "2006-Jan-2 15:04"},
	{regexp.MustCompile(`^[F-W][a-u]{2} [A-S][a-y]{2} +\d{1,2} \d{2}:\d{2}:\d{2} \d{4}`), "Mon Jan _2 15:04:05 2006"},
	{regexp.MustCompile(`^[F-W][a-u]{2}, \d{1,2} [A-S][a-y]{2} \d{4} \d{2}:\d{2}:\d{2} [A-Z]{2,5}`), "Mon, 2 Jan 2006 15:04:05 MST"},
	{regexp.MustCompile(`^[F-W][a-u]{2}, \d{1,2} [A-S][a-y]{2} \d{4} \d{2}:\d{2}:\d{2} [+-]\d{4}`), "Mon, 2 Jan 2006 15:04:05 -0700"},
	{regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`), "2006-1-2"},
	{regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{2}:\d{2}:\d{2} [+-]\d{4}`), "2/1/2006 15:04:05 -0700"},
	{regexp.MustCompile(`^\d{1,2} [A-S][a-y]{2} \d{4}`), "2 Jan 2006"},
}

// reISO8601 recognizes the machine-readable form used in <time datetime=...>
var reISO8601 = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}T\d{1,2}:\d{2}:\d{2}Z`)

// sizeToken matches a leading size field: a number with an optional binary
// unit letter (an "iB"/"B" tail is tolerated), a bare byte count, or the "-"
// placeholder servers print for directories.
var sizeToken = regexp.MustCompile(`^(?i:\d+(?:\.\d+)? ?[KMGTPEZY](?:iB|B)?|\d+(?:\.\d+)? ?B|\d+|-)`)

// sizeUnits maps a unit letter to its power of 1024
var sizeUnits = map[byte]int{
	'B': 0, 'K': 1, 'M': 2, 'G': 3, 'T': 4, 'P': 5, 'E': 6, 'Z': 7, 'Y': 8,
}

// TakeTime consumes a leading datetime token from s. It returns the parsed
// timestamp, the remainder of s after the token, and whether a token matched.
// Timestamps are naive; whatever the server printed is kept as-is in UTC.
func TakeTime(s string) (time.Time, string, bool) {
	for _, f := range timeFormats {
		loc := f.re.FindStringIndex(s)
		if loc == nil {
			continue
		}
		t, err := time.Parse(f.layout, s[:loc[1]])
		if err != nil {
			continue
		}
		return t, s[loc[1]:], true
	}
	return time.Time{}, s, false
}

// ParseTime parses a whole cell as a datetime, returning the zero time when
// no known format matches.
func ParseTime(s string) (time.Time, bool) {
	t, _, ok := TakeTime(strings.TrimSpace(s))
	return t, ok
}

// TakeSize consumes a leading size token from s. The returned size is
// SizeUnknown for the "-" placeholder. ok is false when no token matched at
// all, in which case s is returned unchanged.
func TakeSize(s string) (int64, string, bool) {
	loc := sizeToken.FindStringIndex(s)
	if loc == nil {
		return SizeUnknown, s, false
	}
	return parseSizeToken(s[:loc[1]]), s[loc[1]:], true
}

// ParseSize converts a human-readable size field to a byte count. Unit
// suffixes use the binary convention (1K = 1024); "" and "-" mean unknown, as
// does anything unparseable. It never fails, malformed sizes just degrade.
func ParseSize(s string) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return SizeUnknown
	}
	if !sizeToken.MatchString(s) || sizeToken.FindString(s) != s {
		return SizeUnknown
	}
	return parseSizeToken(s)
}

// parseSizeToken converts an already-matched size token to bytes
func parseSizeToken(tok string) int64 {
	tok = strings.ReplaceAll(strings.ReplaceAll(tok, ",", ""), " ", "")
	if tok == "" || tok == "-" {
		return SizeUnknown
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n
	}
	upper := strings.TrimSuffix(strings.TrimSuffix(strings.ToUpper(tok), "IB"), "B")
	if upper == "" {
		return SizeUnknown
	}
	unit := upper[len(upper)-1]
	num := upper
	exp, isUnit := sizeUnits[unit]
	if isUnit {
		num = upper[:len(upper)-1]
	} else {
		exp = 0
	}
	if num == "" {
		return SizeUnknown
	}
	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return SizeUnknown
	}
	return int64(math.Round(val * math.Pow(1024, float64(exp))))
}

// hrefToName derives an entry name from a link target: the path-unescaped
// basename, with a single trailing "/" kept for directories.
func hrefToName(href string) string {
	trimmed := strings.TrimRight(href, "/")
	unescaped, err := url.PathUnescape(trimmed)
	if err != nil {
		unescaped = trimmed
	}
	name := path.Base(unescaped)
	if name == "." || name == "/" {
		return ""
	}
	if strings.HasSuffix(href, "/") {
		name += "/"
	}
	return name
}

// reAbsPath matches absolute URLs and absolute paths, which point outside the
// listing and never denote entries
var reAbsPath = regexp.MustCompile(`^((ht|f)tps?:/)?/`)

// isNavLink reports whether an anchor is a navigation aid (parent-directory
// or sort-control link) rather than a listing entry
func isNavLink(label, href string) bool {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(label)), "/") {
	case "parent directory", ".", "..":
		return true
	}
	switch strings.TrimSuffix(href, "/") {
	case "", ".", "..":
		return true
	}
	return strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#")
}
