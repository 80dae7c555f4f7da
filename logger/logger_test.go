package logger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithComponent(t *testing.T) {
	entry := New().WithComponent("catalog")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "catalog" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalid(t *testing.T) {
	l := New()
	if err := l.Configure("loud", "json", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid level")
	}
	if err := l.Configure("info", "xml", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestConfigureTextOutput(t *testing.T) {
	l := New()
	if err := l.Configure("debug", "text", "stdout", 0); err != nil {
		t.Fatalf("configure: %v", err)
	}
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.WithComponent("loader").Debug("pipeline settled")
	if !strings.Contains(buf.String(), "pipeline settled") {
		t.Fatalf("missing message in %q", buf.String())
	}
}

func TestConfigureRotatingFile(t *testing.T) {
	l := New()
	path := filepath.Join(t.TempDir(), "app.log")
	if err := l.Configure("info", "json", path, 7); err != nil {
		t.Fatalf("configure: %v", err)
	}
}
