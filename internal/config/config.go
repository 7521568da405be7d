// Package config loads a partial orchestrator.CaptureOptions document
// from YAML and overlays it onto a programmatic baseline (normally
// orchestrator.DefaultOptions()). It is the "configuration façade"
// external collaborator: one Load/Merge pair, nothing more.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dev-console/harcapture/internal/orchestrator"
)

// Load reads the YAML file at path and decodes it into a
// CaptureOptions overlay. Any field absent from the document keeps its
// Go zero value; Merge is what decides whether a zero value means
// "not set" or "explicitly unset".
func Load(path string) (orchestrator.CaptureOptions, error) {
	var overlay orchestrator.CaptureOptions

	data, err := os.ReadFile(path)
	if err != nil {
		return overlay, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return overlay, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return overlay, nil
}

// Merge overlays the non-zero fields of overlay onto base and returns
// the result. base is typically orchestrator.DefaultOptions(); overlay
// is typically the result of Load. Slice and map fields replace the
// base value wholesale when present in the overlay rather than being
// appended to, matching the "later wins" contract a YAML config layer
// is expected to have.
func Merge(base, overlay orchestrator.CaptureOptions) orchestrator.CaptureOptions {
	out := base

	if overlay.CaptureTypes != 0 {
		out.CaptureTypes = overlay.CaptureTypes
	}
	if overlay.CreatorName != "" {
		out.CreatorName = overlay.CreatorName
	}
	if overlay.BrowserName != "" {
		out.BrowserName = overlay.BrowserName
	}
	if overlay.BrowserVersion != "" {
		out.BrowserVersion = overlay.BrowserVersion
	}
	if overlay.ForceSeleniumNetworkApi {
		out.ForceSeleniumNetworkApi = true
	}
	if overlay.MaxResponseBodySize != 0 {
		out.MaxResponseBodySize = overlay.MaxResponseBodySize
	}
	if overlay.UrlIncludePatterns != nil {
		out.UrlIncludePatterns = overlay.UrlIncludePatterns
	}
	if overlay.UrlExcludePatterns != nil {
		out.UrlExcludePatterns = overlay.UrlExcludePatterns
	}
	if overlay.ResponseBodyScope != 0 {
		out.ResponseBodyScope = overlay.ResponseBodyScope
	}
	if overlay.ResponseBodyMimeFilter != nil {
		out.ResponseBodyMimeFilter = overlay.ResponseBodyMimeFilter
	}
	if overlay.OutputFilePath != "" {
		out.OutputFilePath = overlay.OutputFilePath
	}
	if overlay.EnableCompression {
		out.EnableCompression = true
	}
	if overlay.MaxOutputFileSize != 0 {
		out.MaxOutputFileSize = overlay.MaxOutputFileSize
	}
	if overlay.LogFilePath != "" {
		out.LogFilePath = overlay.LogFilePath
	}
	if overlay.SensitiveHeaders != nil {
		out.SensitiveHeaders = overlay.SensitiveHeaders
	}
	if overlay.SensitiveCookies != nil {
		out.SensitiveCookies = overlay.SensitiveCookies
	}
	if overlay.SensitiveQueryParams != nil {
		out.SensitiveQueryParams = overlay.SensitiveQueryParams
	}
	if overlay.SensitiveBodyPatterns != nil {
		out.SensitiveBodyPatterns = overlay.SensitiveBodyPatterns
	}
	if overlay.MaxWebSocketFramesPerConnection != 0 {
		out.MaxWebSocketFramesPerConnection = overlay.MaxWebSocketFramesPerConnection
	}
	if overlay.CustomMetadata != nil {
		out.CustomMetadata = overlay.CustomMetadata
	}
	if overlay.InitialPageRef != "" {
		out.InitialPageRef = overlay.InitialPageRef
	}
	if overlay.InitialPageTitle != "" {
		out.InitialPageTitle = overlay.InitialPageTitle
	}

	return out
}

// LoadAndMerge is the common case: load path and merge it over base in
// one call.
func LoadAndMerge(base orchestrator.CaptureOptions, path string) (orchestrator.CaptureOptions, error) {
	overlay, err := Load(path)
	if err != nil {
		return base, err
	}
	return Merge(base, overlay), nil
}
