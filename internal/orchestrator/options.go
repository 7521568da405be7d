// options.go — CaptureOptions: the configuration bundle validated once at
// Start and treated as immutable thereafter, per §3/§4.5. Field names
// mirror the option table in spec §6 so CaptureOptions doubles as the
// shape internal/config unmarshals YAML overlays onto.
package orchestrator

import "fmt"

// CaptureType is a bit-mask enumerating the data classes recorded for
// each exchange.
type CaptureType uint32

const (
	CaptureRequestHeaders CaptureType = 1 << iota
	CaptureRequestCookies
	CaptureRequestContent
	CaptureRequestBinaryContent
	CaptureResponseHeaders
	CaptureResponseCookies
	CaptureResponseContent
	CaptureResponseBinaryContent
	CaptureTimings
	CaptureConnectionInfo
	CaptureWebSocket
)

// DefaultCaptureTypes is "headers+cookies+text+timings", per §6.
const DefaultCaptureTypes = CaptureRequestHeaders | CaptureRequestCookies |
	CaptureResponseHeaders | CaptureResponseCookies |
	CaptureRequestContent | CaptureResponseContent | CaptureTimings

func (c CaptureType) has(flag CaptureType) bool { return c&flag != 0 }

// ResponseBodyScope is the MIME-type gate controlling which responses
// trigger body retrieval.
type ResponseBodyScope int

const (
	ScopeAll ResponseBodyScope = iota
	ScopePagesAndApi
	ScopeTextContent
	ScopeNone
)

func (s ResponseBodyScope) String() string {
	switch s {
	case ScopePagesAndApi:
		return "PagesAndApi"
	case ScopeTextContent:
		return "TextContent"
	case ScopeNone:
		return "None"
	default:
		return "All"
	}
}

// UnmarshalYAML accepts the four documented scope names as a YAML
// scalar so a config file can say `responseBodyScope: PagesAndApi`
// instead of the underlying int.
func (s *ResponseBodyScope) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch raw {
	case "", "All":
		*s = ScopeAll
	case "PagesAndApi":
		*s = ScopePagesAndApi
	case "TextContent":
		*s = ScopeTextContent
	case "None":
		*s = ScopeNone
	default:
		return fmt.Errorf("orchestrator: unknown responseBodyScope %q", raw)
	}
	return nil
}

// CaptureOptions is the full configuration bundle, per §6's option table.
// Field tags are the YAML overlay internal/config unmarshals onto before
// merging over programmatic defaults; unset YAML keys leave the
// programmatic value untouched (see config.Merge).
type CaptureOptions struct {
	CaptureTypes CaptureType `yaml:"captureTypes,omitempty"`

	CreatorName    string `yaml:"creatorName,omitempty"`
	BrowserName    string `yaml:"browserName,omitempty"`
	BrowserVersion string `yaml:"browserVersion,omitempty"`

	ForceSeleniumNetworkApi bool `yaml:"forceSeleniumNetworkApi,omitempty"`

	MaxResponseBodySize int64 `yaml:"maxResponseBodySize,omitempty"`

	UrlIncludePatterns []string `yaml:"urlIncludePatterns,omitempty"`
	UrlExcludePatterns []string `yaml:"urlExcludePatterns,omitempty"`

	ResponseBodyScope      ResponseBodyScope `yaml:"responseBodyScope,omitempty"`
	ResponseBodyMimeFilter []string          `yaml:"responseBodyMimeFilter,omitempty"`

	OutputFilePath    string `yaml:"outputFilePath,omitempty"`
	EnableCompression bool   `yaml:"enableCompression,omitempty"`
	MaxOutputFileSize int64  `yaml:"maxOutputFileSize,omitempty"`

	LogFilePath string `yaml:"logFilePath,omitempty"`

	SensitiveHeaders      []string `yaml:"sensitiveHeaders,omitempty"`
	SensitiveCookies      []string `yaml:"sensitiveCookies,omitempty"`
	SensitiveQueryParams  []string `yaml:"sensitiveQueryParams,omitempty"`
	SensitiveBodyPatterns []string `yaml:"sensitiveBodyPatterns,omitempty"`

	MaxWebSocketFramesPerConnection int `yaml:"maxWebSocketFramesPerConnection,omitempty"`

	CustomMetadata map[string]interface{} `yaml:"customMetadata,omitempty"`

	InitialPageRef   string `yaml:"initialPageRef,omitempty"`
	InitialPageTitle string `yaml:"initialPageTitle,omitempty"`
}

// DefaultOptions returns a CaptureOptions with every documented default
// applied (§6): default capture types, CreatorName "harcapture", no
// streaming, unlimited body size, ResponseBodyScope All.
func DefaultOptions() CaptureOptions {
	return CaptureOptions{
		CaptureTypes:    DefaultCaptureTypes,
		CreatorName:     "harcapture",
		ResponseBodyScope: ScopeAll,
	}
}

// Validate checks every rule in §4.5 "Options validation" and aggregates
// all violations into a single *ValidationError. Returns nil if valid.
func (o CaptureOptions) Validate() error {
	var v []string

	if o.EnableCompression && o.ForceSeleniumNetworkApi {
		v = append(v, "EnableCompression cannot be combined with ForceSeleniumNetworkApi (fallback adapter has no bodies to compress)")
	}
	if o.ResponseBodyScope == ScopeNone && o.MaxResponseBodySize > 0 {
		v = append(v, "MaxResponseBodySize > 0 is contradictory with ResponseBodyScope=None")
	}
	if o.MaxResponseBodySize < 0 {
		v = append(v, "MaxResponseBodySize must be >= 0")
	}
	if o.MaxWebSocketFramesPerConnection < 0 {
		v = append(v, "MaxWebSocketFramesPerConnection must be >= 0")
	}
	if o.MaxOutputFileSize < 0 {
		v = append(v, "MaxOutputFileSize must be >= 0")
	}
	if o.MaxOutputFileSize > 0 && o.OutputFilePath == "" {
		v = append(v, "MaxOutputFileSize > 0 requires OutputFilePath (streaming required)")
	}
	if o.EnableCompression && o.OutputFilePath == "" {
		v = append(v, "EnableCompression requires OutputFilePath")
	}
	if o.CreatorName == "" {
		v = append(v, "CreatorName must not be empty (unset means default, empty means misconfigured)")
	}
	for i, p := range o.UrlIncludePatterns {
		if p == "" {
			v = append(v, fmt.Sprintf("UrlIncludePatterns[%d] must not be empty", i))
		}
	}
	for i, p := range o.UrlExcludePatterns {
		if p == "" {
			v = append(v, fmt.Sprintf("UrlExcludePatterns[%d] must not be empty", i))
		}
	}

	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Violations: v}
}

// IsStreaming reports whether these options engage the streaming writer.
func (o CaptureOptions) IsStreaming() bool { return o.OutputFilePath != "" }
