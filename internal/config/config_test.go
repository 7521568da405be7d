package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dev-console/harcapture/internal/orchestrator"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesDocumentedFields(t *testing.T) {
	path := writeYAML(t, `
creatorName: my-test-runner
outputFilePath: /tmp/out.har
enableCompression: true
responseBodyScope: TextContent
sensitiveHeaders:
  - Authorization
  - Cookie
maxWebSocketFramesPerConnection: 50
`)

	overlay, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "my-test-runner", overlay.CreatorName)
	require.Equal(t, "/tmp/out.har", overlay.OutputFilePath)
	require.True(t, overlay.EnableCompression)
	require.Equal(t, orchestrator.ScopeTextContent, overlay.ResponseBodyScope)
	require.Equal(t, []string{"Authorization", "Cookie"}, overlay.SensitiveHeaders)
	require.Equal(t, 50, overlay.MaxWebSocketFramesPerConnection)
}

func TestLoadRejectsUnknownResponseBodyScope(t *testing.T) {
	path := writeYAML(t, "responseBodyScope: Bogus\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestMergeLeavesBaseUntouchedWhenOverlayIsZero(t *testing.T) {
	base := orchestrator.DefaultOptions()
	merged := Merge(base, orchestrator.CaptureOptions{})
	require.Equal(t, base, merged)
}

func TestMergeOverlayWinsOnSetFields(t *testing.T) {
	base := orchestrator.DefaultOptions()
	overlay := orchestrator.CaptureOptions{
		CreatorName:        "overlay-name",
		MaxResponseBodySize: 4096,
		UrlExcludePatterns: []string{"**/*.png"},
	}

	merged := Merge(base, overlay)
	require.Equal(t, "overlay-name", merged.CreatorName)
	require.Equal(t, int64(4096), merged.MaxResponseBodySize)
	require.Equal(t, []string{"**/*.png"}, merged.UrlExcludePatterns)
	require.Equal(t, base.CaptureTypes, merged.CaptureTypes)
}

func TestLoadAndMergeRoundTrip(t *testing.T) {
	path := writeYAML(t, "creatorName: overlay-runner\n")
	merged, err := LoadAndMerge(orchestrator.DefaultOptions(), path)
	require.NoError(t, err)
	require.Equal(t, "overlay-runner", merged.CreatorName)
}
