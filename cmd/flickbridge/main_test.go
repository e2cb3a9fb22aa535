package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	content := fmt.Sprintf("[paths]\nindex_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "index"), filepath.Join(base, "logs"))
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecognizeCommand(t *testing.T) {
	out, err := runCommand(t, "recognize", "https://www.flickr.com/photos/poly/6318576132/")
	if err != nil {
		t.Fatalf("recognize failed: %v", err)
	}
	if !strings.Contains(out, "single_photo") && !strings.Contains(out, "Photo ID: 6318576132") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRecognizeRejectsNonFlickr(t *testing.T) {
	if _, err := runCommand(t, "recognize", "https://example.com/photo.jpg"); err == nil {
		t.Fatal("expected an error for a non-flickr url")
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	// A second init must refuse to overwrite.
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}

func TestIndexInfoCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCommand(t, "index", "info", "--config", cfgPath)
	if err != nil {
		t.Fatalf("index info failed: %v", err)
	}
	if !strings.Contains(out, "Indexed photos: 0") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestIndexLookupEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCommand(t, "index", "lookup", "123", "--config", cfgPath)
	if err != nil {
		t.Fatalf("index lookup failed: %v", err)
	}
	if !strings.Contains(out, "0 of 1 photo ids found") {
		t.Fatalf("unexpected output: %q", out)
	}
}
