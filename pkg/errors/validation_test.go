package errors

import (
	"strings"
	"testing"
)

func TestValidateTerm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "ephemeral", false},
		{"valid multiword", "ad hoc", false},
		{"valid hyphenated", "well-being", false},
		{"valid apostrophe", "o'clock", false},
		{"valid abbreviation", "e.g.", false},
		{"valid uppercase", "Schadenfreude", false},
		{"valid accented", "déjà vu", false},
		{"valid untrimmed", "  serendipity  ", false},

		{"empty", "", true},
		{"only spaces", "   ", true},
		{"too long", strings.Repeat("a", 200), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"starts with digit", "1word", true},
		{"starts with hyphen", "-word", true},
		{"special chars", "word@word", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTerm(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTerm(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "out/graph.svg", false},
		{"valid absolute", "/tmp/graph.svg", false},
		{"valid simple", "graph.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"path traversal", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, format := range []string{"svg", "png", "dot", "json", "SVG"} {
		if err := ValidateFormat(format); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", format, err)
		}
	}
	for _, format := range []string{"", "pdf", "gif"} {
		if err := ValidateFormat(format); err == nil {
			t.Errorf("ValidateFormat(%q) = nil, want error", format)
		}
		if format != "" && GetCode(ValidateFormat(format)) != ErrCodeInvalidFormat {
			t.Errorf("ValidateFormat(%q) code = %v, want %v", format, GetCode(ValidateFormat(format)), ErrCodeInvalidFormat)
		}
	}
}
