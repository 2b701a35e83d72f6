// Package filter selects listing entries by extension or glob pattern.
package filter

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"httpls/logging"
)

// Filter matches entry paths against a set of extensions and glob patterns.
// An empty filter matches everything.
type Filter struct {
	extensionMap map[string]bool
	globs        []string
	logger       *logging.Logger
}

// NewFilter creates a filter from a mixed list of rules. A rule containing a
// glob metacharacter (such as "**/*.iso") is treated as a doublestar
// pattern; anything else is an extension (".pdf" and "pdf" are equivalent).
func NewFilter(rules []string, logger *logging.Logger) *Filter {
	extensionMap := make(map[string]bool)
	var globs []string

	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		if strings.ContainsAny(rule, "*?[{") {
			globs = append(globs, rule)
			continue
		}
		if !strings.HasPrefix(rule, ".") {
			rule = "." + rule
		}
		extensionMap[strings.ToLower(rule)] = true
	}

	return &Filter{
		extensionMap: extensionMap,
		globs:        globs,
		logger:       logger,
	}
}

// Empty reports whether the filter has no rules
func (f *Filter) Empty() bool {
	return len(f.extensionMap) == 0 && len(f.globs) == 0
}

// Match checks an entry path (relative, slash-separated) against the rules
func (f *Filter) Match(entryPath string) bool {
	if f.Empty() {
		return true
	}

	ext := strings.ToLower(path.Ext(entryPath))
	if f.extensionMap[ext] {
		f.logger.Debug("Entry %s matches extension %s", entryPath, ext)
		return true
	}

	for _, pattern := range f.globs {
		ok, err := doublestar.Match(pattern, entryPath)
		if err != nil {
			f.logger.Warn("Bad filter pattern %q: %v", pattern, err)
			continue
		}
		if ok {
			f.logger.Debug("Entry %s matches pattern %s", entryPath, pattern)
			return true
		}
	}

	return false
}

// Rules returns the active rules for display
func (f *Filter) Rules() []string {
	rules := make([]string, 0, len(f.extensionMap)+len(f.globs))
	for ext := range f.extensionMap {
		rules = append(rules, ext)
	}
	rules = append(rules, f.globs...)
	return rules
}

// ParseRules splits a comma-separated rule list from the command line
func ParseRules(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	rules := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			rules = append(rules, p)
		}
	}
	return rules
}
