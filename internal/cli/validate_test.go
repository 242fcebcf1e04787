package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validSpecYAML = `openapi: 3.0.0
info:
  title: Sample
  version: 1.0.0
paths:
  /users:
    get:
      summary: GET /users
      responses:
        "200":
          description: Successful response
`

func TestValidateAcceptsValidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	if err := os.WriteFile(path, []byte(validSpecYAML), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"validate", "--input", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsBrokenDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	broken := strings.Replace(validSpecYAML, "openapi: 3.0.0", "openapi: [not, a, version]", 1)
	if err := os.WriteFile(path, []byte(broken), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"validate", "--input", path})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestValidateRequiresInput(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"validate"})

	err := root.Execute()
	if err == nil || !errors.Is(err, ErrUsage) {
		t.Fatalf("err = %v, want usage error", err)
	}
}

func TestValidateMissingFile(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"validate", "--input", filepath.Join(t.TempDir(), "missing.yaml")})

	err := root.Execute()
	if err == nil || !errors.Is(err, ErrUsage) {
		t.Fatalf("err = %v, want usage error", err)
	}
}
