package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesSampleConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "capture2openapi.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", out})
	if err := root.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	content := string(data)
	for _, key := range []string{"input:", "out:", "format:", "title:", "apiVersion:", "validate:"} {
		if !strings.Contains(content, key) {
			t.Errorf("sample config missing %q", key)
		}
	}
}

func TestInitRefusesOverwriteWithoutForce(t *testing.T) {
	out := filepath.Join(t.TempDir(), "capture2openapi.yaml")
	if err := os.WriteFile(out, []byte("existing"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", out})

	err := root.Execute()
	if err == nil || !errors.Is(err, ErrUsage) {
		t.Fatalf("err = %v, want usage error", err)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", out, "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) == "existing" {
		t.Errorf("force did not overwrite")
	}
}
