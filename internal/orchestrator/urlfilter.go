// urlfilter.go — UrlIncludePatterns/UrlExcludePatterns glob matching,
// per §4.5 pipeline step 2 and §8 testable property 6: "exclude wins;
// else if any include is configured, record iff some include matches;
// else record."
//
// Patterns use '**' (match across path segments) and '*'/'?' (standard
// glob, one segment) the way the teacher's URL-pattern helpers in
// cmd/dev-console/config.go treat glob-style include/exclude lists for
// tool filtering — ** is handled by first collapsing it to a
// regex-equivalent "match anything" rather than relying on path.Match,
// which stops at path separators.
package orchestrator

import (
	"regexp"
	"strings"
	"sync"
)

var globCache sync.Map // pattern string -> *regexp.Regexp

func compileGlob(pattern string) *regexp.Regexp {
	if v, ok := globCache.Load(pattern); ok {
		return v.(*regexp.Regexp)
	}
	re := globToRegexp(pattern)
	globCache.Store(pattern, re)
	return re
}

func globToRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	i := 0
	for i < len(pattern) {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i += 2
		case pattern[i] == '*':
			b.WriteString("[^/]*")
			i++
		case pattern[i] == '?':
			b.WriteString(".")
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
			i++
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		// Validate() rejects empty patterns before Start, so this path
		// is only reachable for a pathological pattern string; fall back
		// to a regex that matches nothing rather than panic.
		return regexp.MustCompile(`$.^`)
	}
	return re
}

// urlAllowed implements §8 testable property 6.
func urlAllowed(url string, includes, excludes []string) bool {
	for _, ex := range excludes {
		if compileGlob(ex).MatchString(url) {
			return false
		}
	}
	if len(includes) == 0 {
		return true
	}
	for _, in := range includes {
		if compileGlob(in).MatchString(url) {
			return true
		}
	}
	return false
}
