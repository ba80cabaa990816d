package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-startpage/components/startpage"
)

func TestFormatFromPath(t *testing.T) {
	cases := map[string]string{
		"config.json": "json",
		"config.JSON": "json",
		"config.yaml": "yaml",
		"-":           "yaml",
	}
	for path, want := range cases {
		if got := formatFromPath(path); got != want {
			t.Fatalf("formatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	if !confirm(strings.NewReader("yes\n"), &out, "Proceed?") {
		t.Fatalf("expected yes to confirm")
	}
	if !strings.Contains(out.String(), "Proceed? [y/N]") {
		t.Fatalf("expected prompt, got %q", out.String())
	}
	if confirm(strings.NewReader("\n"), &out, "Proceed?") {
		t.Fatalf("expected empty answer to decline")
	}
}

func TestGlobalsOpenStorageBackends(t *testing.T) {
	for _, storage := range []string{"file", "memory", "sqlite"} {
		t.Run(storage, func(t *testing.T) {
			g := &Globals{DataDir: t.TempDir(), Storage: storage, LogLevel: "error"}
			e, err := g.open(context.Background(), nil)
			if err != nil {
				t.Fatalf("open returned error: %v", err)
			}
			defer e.close()
			if got := len(e.store.Config().Services); got != len(startpage.DefaultConfig().Services) {
				t.Fatalf("expected default services, got %d", got)
			}
			if (storage == "file") != (e.files != nil) {
				t.Fatalf("file storage should expose FileKV only for the file backend")
			}
		})
	}
}
