// entrybuild.go — translates adapter.Request/ResponseMeta into HAR
// Request/Response objects, applying header/cookie/query-param
// redaction per §4.5 pipeline step 4. Shared by the normal completion
// path and the redirect-hop path.
package orchestrator

import (
	"net/url"
	"strings"

	"github.com/dev-console/harcapture/internal/adapter"
	"github.com/dev-console/harcapture/internal/harmodel"
	"github.com/dev-console/harcapture/internal/redaction"
)

func nameValues(h []adapter.Header) []harmodel.NameValue {
	out := make([]harmodel.NameValue, 0, len(h))
	for _, v := range h {
		out = append(out, harmodel.NameValue{Name: v.Name, Value: v.Value})
	}
	return out
}

// buildRequest converts an adapter.Request into a harmodel.Request,
// applying header/cookie/query-param redaction when redactor is
// non-nil.
func buildRequest(req adapter.Request, redactor *redaction.EntryRedactor) *harmodel.Request {
	headers := make([]harmodel.NameValue, 0, len(req.Headers))
	var cookies []harmodel.Cookie
	for _, h := range req.Headers {
		value := h.Value
		if strings.EqualFold(h.Name, "cookie") {
			cookies = append(cookies, parseCookieHeader(h.Value, redactor)...)
		}
		if redactor != nil {
			value, _ = redactor.RedactHeaderValue(h.Name, value)
		}
		headers = append(headers, harmodel.NameValue{Name: h.Name, Value: value})
	}

	query := parseQueryString(req.URL, redactor)

	r := &harmodel.Request{
		Method:      req.Method,
		URL:         req.URL,
		HTTPVersion: req.HTTPVersion,
		Cookies:     cookies,
		Headers:     headers,
		QueryString: query,
		HeadersSize: -1,
		BodySize:    int64(len(req.PostData)),
	}
	if req.HasPostData {
		r.PostData = &harmodel.PostData{MimeType: "application/octet-stream", Text: req.PostData}
	}
	return r
}

func parseCookieHeader(value string, redactor *redaction.EntryRedactor) []harmodel.Cookie {
	var out []harmodel.Cookie
	for _, pair := range strings.Split(value, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, val, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if redactor != nil {
			val, _ = redactor.RedactCookieValue(name, val)
		}
		out = append(out, harmodel.Cookie{Name: name, Value: val})
	}
	return out
}

func parseQueryString(rawURL string, redactor *redaction.EntryRedactor) []harmodel.NameValue {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var out []harmodel.NameValue
	for k, vs := range u.Query() {
		for _, v := range vs {
			if redactor != nil {
				v, _ = redactor.RedactQueryParamValue(k, v)
			}
			out = append(out, harmodel.NameValue{Name: k, Value: v})
		}
	}
	return out
}

// buildResponse converts an adapter.ResponseMeta into a harmodel.Response
// skeleton (content is filled in separately by the body pool / inline
// path).
func buildResponse(resp adapter.ResponseMeta, redactor *redaction.EntryRedactor) *harmodel.Response {
	headers := make([]harmodel.NameValue, 0, len(resp.Headers))
	var cookies []harmodel.Cookie
	for _, h := range resp.Headers {
		value := h.Value
		if strings.EqualFold(h.Name, "set-cookie") {
			if name, val, ok := strings.Cut(strings.SplitN(h.Value, ";", 2)[0], "="); ok {
				name = strings.TrimSpace(name)
				if redactor != nil {
					val, _ = redactor.RedactCookieValue(name, val)
				}
				cookies = append(cookies, harmodel.Cookie{Name: name, Value: val})
			}
		}
		if redactor != nil {
			value, _ = redactor.RedactHeaderValue(h.Name, value)
		}
		headers = append(headers, harmodel.NameValue{Name: h.Name, Value: value})
	}

	return &harmodel.Response{
		Status:      resp.Status,
		StatusText:  resp.StatusText,
		HTTPVersion: resp.HTTPVersion,
		Cookies:     cookies,
		Headers:     headers,
		Content:     &harmodel.Content{MimeType: resp.MimeType},
		HeadersSize: -1,
		BodySize:    -1,
	}
}
