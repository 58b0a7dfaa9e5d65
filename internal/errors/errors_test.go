package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestFastPathNoTelemetry(t *testing.T) {
	// Ensure no telemetry or hooks
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	// Create an error - should use fast path
	err := fmt.Errorf("test error")
	ee := New(err).Build()

	if ee.Err.Error() != "test error" {
		t.Errorf("Expected error message 'test error', got '%s'", ee.Err.Error())
	}

	if ee.GetComponent() != "unknown" {
		t.Errorf("Expected component 'unknown' in fast path, got '%s'", ee.GetComponent())
	}

	if ee.Category != CategoryGeneric {
		t.Errorf("Expected category 'generic' in fast path, got '%s'", ee.Category)
	}
}

func TestBuilderPreservesExplicitValues(t *testing.T) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	ee := New(fmt.Errorf("decode failed")).
		Component("classifier").
		Category(CategoryImageDecode).
		Context("image_format", "png").
		Build()

	if ee.GetComponent() != "classifier" {
		t.Errorf("Expected component 'classifier', got '%s'", ee.GetComponent())
	}
	if ee.Category != CategoryImageDecode {
		t.Errorf("Expected category 'image-decode', got '%s'", ee.Category)
	}
	if got := ee.GetContext()["image_format"]; got != "png" {
		t.Errorf("Expected context image_format 'png', got '%v'", got)
	}
}

func TestCategoryDetectionHeuristics(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected ErrorCategory
	}{
		{"model not loaded", "model not loaded", CategoryModelNotLoaded},
		{"model load failure", "failed to load model from disk", CategoryModelLoad},
		{"label failure", "label count mismatch", CategoryLabelLoad},
		{"decode failure", "image: unknown format, cannot decode", CategoryImageDecode},
		{"validation failure", "invalid file extension", CategoryValidation},
		{"database failure", "database connection refused", CategoryDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectCategory(fmt.Errorf("%s", tt.message), "")
			if got != tt.expected {
				t.Errorf("detectCategory(%q) = %s, want %s", tt.message, got, tt.expected)
			}
		})
	}
}

func TestIsCategoryMatching(t *testing.T) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()

	notFound := New(NewStd("record not found")).Category(CategoryNotFound).Build()
	if !IsNotFound(notFound) {
		t.Error("Expected IsNotFound to match CategoryNotFound error")
	}
	if IsNotFound(NewStd("plain error")) {
		t.Error("Expected IsNotFound to reject plain errors")
	}

	validation := ValidationError("file too large")
	if !IsValidation(validation) {
		t.Error("Expected IsValidation to match ValidationError")
	}

	// Wrapping must survive errors.As traversal
	wrapped := fmt.Errorf("handler: %w", notFound)
	if !IsNotFound(wrapped) {
		t.Error("Expected IsNotFound to match wrapped enhanced error")
	}
}

func TestErrorHooksObserveBuiltErrors(t *testing.T) {
	SetTelemetryReporter(nil)
	ClearErrorHooks()
	defer ClearErrorHooks()

	var seen []*EnhancedError
	AddErrorHook(func(ee *EnhancedError) {
		seen = append(seen, ee)
	})

	_ = New(fmt.Errorf("hooked error")).Component("datastore").Category(CategoryDatabase).Build()

	if len(seen) != 1 {
		t.Fatalf("Expected 1 hooked error, got %d", len(seen))
	}
	if seen[0].GetComponent() != "datastore" {
		t.Errorf("Expected hooked component 'datastore', got '%s'", seen[0].GetComponent())
	}
}

func TestRegexPrecompilation(t *testing.T) {
	// Test URL scrubbing
	testMessage1 := "Error at https://api.example.com?api_key=secret123&token=abc"
	scrubbed1 := basicURLScrub(testMessage1)
	expected1 := "Error at https://api.example.com?[REDACTED]"
	if scrubbed1 != expected1 {
		t.Errorf("URL scrubbing failed. Expected: %s, got: %s", expected1, scrubbed1)
	}

	// Test API key scrubbing in non-URL context
	testMessage2 := "Config error: api_key=secret123 is invalid"
	scrubbed2 := basicURLScrub(testMessage2)
	if !strings.Contains(scrubbed2, "[API_KEY_REDACTED]") {
		t.Errorf("API key scrubbing failed. Expected to contain '[API_KEY_REDACTED]', got: %s", scrubbed2)
	}

	// Test credential patterns
	testMessage3 := "Auth failed with token=abc123 and password=xyz789"
	scrubbed3 := basicURLScrub(testMessage3)
	if strings.Contains(scrubbed3, "abc123") || strings.Contains(scrubbed3, "xyz789") {
		t.Errorf("Credential scrubbing failed. Sensitive data still present: %s", scrubbed3)
	}
}
