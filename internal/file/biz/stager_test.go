package biz

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"spaces and unicode", "annual report 2024 (final).pdf", "annual_report_2024_final.pdf"},
		{"repeated spaces", "a   b c.pdf", "a_b_c.pdf"},
		{"slashes keep the last element", "a   b///c.pdf", "c.pdf"},
		{"separators dangling at the dot", "draft _v2_.pdf", "draft_v2.pdf"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"leading dots stripped", "..hidden.pdf", "hidden.pdf"},
		{"all hostile", "<<<>>>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.in); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStoredNameKeepsExtension(t *testing.T) {
	got := StoredName("minutes.pdf")
	if filepath.Ext(got) != ".pdf" {
		t.Errorf("StoredName should preserve the extension, got %q", got)
	}
	if !strings.HasPrefix(got, "minutes-") {
		t.Errorf("StoredName should keep the sanitized base, got %q", got)
	}
}

func TestStoredNameHostileInput(t *testing.T) {
	got := StoredName("<<<>>>")
	if !strings.HasPrefix(got, "file-") {
		t.Errorf("fully hostile names should fall back to a generic base, got %q", got)
	}
}

func TestStoredNameCapsBaseLength(t *testing.T) {
	long := strings.Repeat("a", 500) + ".pdf"
	got := StoredName(long)
	base := strings.TrimSuffix(got, filepath.Ext(got))
	// base + "-" + suffix; the sanitized part must be capped at 120
	idx := strings.Index(base, "-")
	if idx == -1 {
		t.Fatalf("expected uniqueness suffix in %q", got)
	}
	if idx > maxBaseNameLen {
		t.Errorf("base length %d exceeds cap %d", idx, maxBaseNameLen)
	}
}

func TestStoredNameUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := StoredName("same.pdf")
		if seen[n] {
			t.Fatalf("duplicate stored name %q", n)
		}
		seen[n] = true
	}
}
