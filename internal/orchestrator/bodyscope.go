// bodyscope.go — MIME-type gate deciding whether a response body is worth
// retrieving, per §4.5 "Body scope and MIME gate" and §4.4 "Decision to
// retrieve".
package orchestrator

import "strings"

var pagesAndApiMimes = []string{
	"text/html", "application/json", "application/xml", "text/xml",
	"multipart/form-data", "application/x-www-form-urlencoded",
}

var textContentPrefixes = []string{"text/"}

var textContentExact = []string{
	"application/json", "application/xml", "application/javascript", "application/x-javascript",
}

// shouldRetrieveBody implements §4.4's "Decision to retrieve": the
// capture type must include body content, the status must not be
// 204/304, and the MIME must fall in the union of the configured scope
// set and the explicit ResponseBodyMimeFilter.
func shouldRetrieveBody(opts CaptureOptions, status int, mimeType string) bool {
	wantsContent := opts.CaptureTypes.has(CaptureResponseContent) || opts.CaptureTypes.has(CaptureResponseBinaryContent)
	if !wantsContent {
		return false
	}
	if status == 204 || status == 304 {
		return false
	}
	return mimeInScope(opts.ResponseBodyScope, opts.ResponseBodyMimeFilter, mimeType)
}

func mimeInScope(scope ResponseBodyScope, explicit []string, mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	base, _, _ := strings.Cut(mimeType, ";")

	if mimeMatchesScope(scope, base) {
		return true
	}
	for _, e := range explicit {
		if strings.EqualFold(strings.TrimSpace(e), base) {
			return true
		}
	}
	return false
}

func mimeMatchesScope(scope ResponseBodyScope, base string) bool {
	switch scope {
	case ScopeAll:
		return true
	case ScopeNone:
		return false
	case ScopePagesAndApi:
		for _, m := range pagesAndApiMimes {
			if base == m {
				return true
			}
		}
		return false
	case ScopeTextContent:
		for _, p := range textContentPrefixes {
			if strings.HasPrefix(base, p) {
				return true
			}
		}
		for _, m := range textContentExact {
			if base == m {
				return true
			}
		}
		return false
	default:
		return false
	}
}
