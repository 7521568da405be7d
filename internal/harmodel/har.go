// Purpose: Defines the HAR 1.2 wire data model shared by every sink (in-memory
// builder, streaming writer) and by the validator and WebDriver façade.
// har.go — HAR 1.2 object graph.
// Field tags follow the HAR 1.2 spec (camelCase); Go field names follow
// Go convention. Optional HAR fields are tagged omitempty so a zero value
// never appears on the wire unless the spec requires it.
// SPEC:HAR — http://www.softwareishard.com/blog/har-12-spec/
package harmodel

// HAR is the root document: a single "log" object.
type HAR struct {
	Log *Log `json:"log"`
}

// Log is the top-level HAR payload.
type Log struct {
	Version string                 `json:"version"`
	Creator *Creator               `json:"creator"`
	Browser *Browser               `json:"browser,omitempty"`
	Pages   []*Page                `json:"pages,omitempty"`
	Entries []*Entry               `json:"entries"`
	Comment string                 `json:"comment,omitempty"`
	Custom  map[string]interface{} `json:"_custom,omitempty"`
}

// Creator identifies the tool that produced the HAR.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Comment string `json:"comment,omitempty"`
}

// Browser identifies the browser that generated the traffic.
type Browser struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Comment string `json:"comment,omitempty"`
}

// Page is a logical page grouping; entries reference it by Page.ID via
// Entry.PageRef.
type Page struct {
	ID              string       `json:"id"`
	StartedDateTime string       `json:"startedDateTime"`
	Title           string       `json:"title"`
	PageTimings     *PageTimings `json:"pageTimings"`
	Comment         string       `json:"comment,omitempty"`
}

// PageTimings carries the two page-lifecycle milestones available from CDP.
type PageTimings struct {
	OnContentLoad float64 `json:"onContentLoad,omitempty"`
	OnLoad        float64 `json:"onLoad,omitempty"`
	Comment       string  `json:"comment,omitempty"`
}

// Entry is a single HTTP (or synthesized WebSocket) exchange.
type Entry struct {
	PageRef         string            `json:"pageref,omitempty"`
	StartedDateTime string            `json:"startedDateTime"`
	Time            float64           `json:"time"`
	Request         *Request          `json:"request"`
	Response        *Response         `json:"response"`
	Cache           *Cache            `json:"cache"`
	Timings         *Timings          `json:"timings"`
	ServerIPAddress string            `json:"serverIPAddress,omitempty"`
	Connection      string            `json:"connection,omitempty"`
	Comment         string            `json:"comment,omitempty"`

	// Extension fields (underscore-prefixed), recognised by Chrome-family
	// tooling and consumed by the WebSocket accumulator / orchestrator.
	ResourceType       string             `json:"_resourceType,omitempty"`
	WebSocketMessages  []WebSocketMessage `json:"_webSocketMessages,omitempty"`
	Initiator          *Initiator         `json:"_initiator,omitempty"`
	SecurityDetails    *SecurityDetails   `json:"_securityDetails,omitempty"`
	RequestBodySize    int64              `json:"_requestBodySize,omitempty"`
	ResponseBodySize   int64              `json:"_responseBodySize,omitempty"`
}

// Request describes the HTTP request half of an Entry.
type Request struct {
	Method      string         `json:"method"`
	URL         string         `json:"url"`
	HTTPVersion string         `json:"httpVersion"`
	Cookies     []Cookie       `json:"cookies"`
	Headers     []NameValue    `json:"headers"`
	QueryString []NameValue    `json:"queryString"`
	PostData    *PostData      `json:"postData,omitempty"`
	HeadersSize int64          `json:"headersSize"`
	BodySize    int64          `json:"bodySize"`
	Comment     string         `json:"comment,omitempty"`
}

// Response describes the HTTP response half of an Entry.
type Response struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Cookies     []Cookie    `json:"cookies"`
	Headers     []NameValue `json:"headers"`
	Content     *Content    `json:"content"`
	RedirectURL string      `json:"redirectURL"`
	HeadersSize int64       `json:"headersSize"`
	BodySize    int64       `json:"bodySize"`
	Comment     string      `json:"comment,omitempty"`
}

// Content is the response body, possibly base64-encoded.
type Content struct {
	Size        int64  `json:"size"`
	Compression int64  `json:"compression,omitempty"`
	MimeType    string `json:"mimeType"`
	Text        string `json:"text,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// PostData is the request body.
type PostData struct {
	MimeType string      `json:"mimeType"`
	Params   []NameValue `json:"params,omitempty"`
	Text     string      `json:"text"`
	Comment  string      `json:"comment,omitempty"`
}

// NameValue is a generic name/value pair used for headers, query strings,
// and postData params.
type NameValue struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Comment string `json:"comment,omitempty"`
}

// Cookie describes a single cookie on a request or response.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Expires  string `json:"expires,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// Cache describes the before/after cache entry state. Always present in a
// HAR 1.2 entry, but both fields are normally omitted (no cache info
// available from CDP for a capture session).
type Cache struct {
	BeforeRequest *CacheState `json:"beforeRequest,omitempty"`
	AfterRequest  *CacheState `json:"afterRequest,omitempty"`
	Comment       string      `json:"comment,omitempty"`
}

// CacheState is the cache entry snapshot on one side of a Cache.
type CacheState struct {
	Expires    string `json:"expires,omitempty"`
	LastAccess string `json:"lastAccess"`
	ETag       string `json:"eTag"`
	HitCount   int    `json:"hitCount"`
	Comment    string `json:"comment,omitempty"`
}

// Timings is the HAR 1.2 per-entry timing breakdown. All values are in
// milliseconds; -1 means "not applicable / not measured" and is preserved
// on the wire — HAR consumers treat -1 as a deliberate sentinel, not a
// missing field.
type Timings struct {
	Blocked float64 `json:"blocked"`
	DNS     float64 `json:"dns"`
	Connect float64 `json:"connect"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
	SSL     float64 `json:"ssl"`
	Comment string  `json:"comment,omitempty"`
}

// WebSocketMessage is one frame inside Entry._webSocketMessages.
type WebSocketMessage struct {
	Type   string  `json:"type"` // "send" or "receive"
	Time   float64 `json:"time"` // seconds since epoch, wall-clock
	Opcode int     `json:"opcode"`
	Data   string  `json:"data"`
}

// Initiator is Chrome's extension describing what triggered a request.
type Initiator struct {
	Type       string `json:"type"`
	URL        string `json:"url,omitempty"`
	LineNumber int    `json:"lineNumber,omitempty"`
}

// SecurityDetails is Chrome's extension describing the TLS session.
type SecurityDetails struct {
	Protocol                          string `json:"protocol,omitempty"`
	CipherSuite                       string `json:"cipherSuite,omitempty"`
	SubjectName                       string `json:"subjectName,omitempty"`
	Issuer                            string `json:"issuer,omitempty"`
	ValidFrom                         int64  `json:"validFrom,omitempty"`
	ValidTo                           int64  `json:"validTo,omitempty"`
	CertificateTransparencyCompliance string `json:"certificateTransparencyCompliance,omitempty"`
}

// NewEmptyLog returns a Log ready for entries to be appended, stamped with
// the given creator name/version and, when non-empty, browser identity.
func NewEmptyLog(creatorName, creatorVersion, browserName, browserVersion string) *Log {
	l := &Log{
		Version: "1.2",
		Creator: &Creator{Name: creatorName, Version: creatorVersion},
		Pages:   []*Page{},
		Entries: []*Entry{},
	}
	if browserName != "" {
		l.Browser = &Browser{Name: browserName, Version: browserVersion}
	}
	return l
}
