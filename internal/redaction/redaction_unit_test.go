package redaction

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRedactionEngine_CustomPatterns(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "redaction.json")
	config := `{
		"patterns": [
			{"name":"custom-secret","pattern":"secret_[0-9]+"},
			{"name":"explicit-replacement","pattern":"token=[a-z]+","replacement":"token=[MASKED]"},
			{"name":"invalid-regex","pattern":"[unclosed"}
		]
	}`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	engine := NewRedactionEngine(configPath)
	got := engine.Redact("secret_42 token=abc")
	if !strings.Contains(got, "[REDACTED:custom-secret]") {
		t.Fatalf("expected default replacement for custom-secret, got %q", got)
	}
	if !strings.Contains(got, "token=[MASKED]") {
		t.Fatalf("expected explicit replacement, got %q", got)
	}
}

func TestRedact_CreditCardLuhnValidation(t *testing.T) {
	t.Parallel()

	engine := NewRedactionEngine("")

	valid := engine.Redact("card 4111 1111 1111 1111")
	if !strings.Contains(valid, "[REDACTED:credit-card]") {
		t.Fatalf("expected valid card to be redacted, got %q", valid)
	}

	invalid := engine.Redact("card 4111 1111 1111 1112")
	if strings.Contains(invalid, "[REDACTED:credit-card]") {
		t.Fatalf("expected invalid card to remain, got %q", invalid)
	}
}

func TestRedact_AddPatternsSupplementsBuiltins(t *testing.T) {
	t.Parallel()

	engine := NewRedactionEngine("")
	engine.AddPatterns([]string{`internal-id-[0-9]+`})

	got := engine.Redact("order internal-id-4821 paid with 4111 1111 1111 1111")
	if !strings.Contains(got, "[REDACTED:custom-0]") {
		t.Fatalf("expected custom pattern to be redacted, got %q", got)
	}
	if !strings.Contains(got, "[REDACTED:credit-card]") {
		t.Fatalf("expected built-in pattern to still fire alongside custom one, got %q", got)
	}
}

func TestLuhnValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{value: "4111111111111111", valid: true},
		{value: "4111-1111-1111-1111", valid: true},
		{value: "4111 1111 1111 1111", valid: true},
		{value: "4111111111111112", valid: false},
		{value: "123456", valid: false},
	}

	for _, tt := range tests {
		if got := luhnValid(tt.value); got != tt.valid {
			t.Fatalf("luhnValid(%q) = %v, want %v", tt.value, got, tt.valid)
		}
	}
}
