package emitter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/capture2openapi/internal/openapi"
)

func sampleDocument() *openapi.Document {
	return &openapi.Document{
		OpenAPI: "3.0.0",
		Info:    openapi.Info{Title: "Test API", Version: "1.0.0", Description: "test"},
		Servers: []openapi.Server{{URL: "https://api.example.com"}},
		Paths: map[string]openapi.PathItem{
			"/users": {
				"get": &openapi.Operation{
					Summary:   "GET /users",
					Responses: map[string]*openapi.ResponseItem{"200": {Description: "Successful response"}},
				},
			},
		},
	}
}

func TestEmitJSONFile(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "api.json")
	res, err := Emit(sampleDocument(), Options{OutPath: out})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Format != FormatJSON || res.Path != out {
		t.Errorf("result = %+v", res)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if doc["openapi"] != "3.0.0" {
		t.Errorf("openapi = %v", doc["openapi"])
	}
}

func TestEmitYAMLByExtension(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "api.yaml")
	res, err := Emit(sampleDocument(), Options{OutPath: out})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Format != FormatYAML || res.FellBack {
		t.Errorf("result = %+v", res)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if doc["openapi"] != "3.0.0" {
		t.Errorf("openapi = %v", doc["openapi"])
	}
}

func TestEmitStdout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res, err := Emit(sampleDocument(), Options{Stdout: &buf})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Path != "" || res.Format != FormatJSON {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(buf.String(), `"openapi": "3.0.0"`) {
		t.Errorf("stdout output = %q", buf.String())
	}
}

func TestEmitRefusesOverwrite(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "api.json")
	if err := os.WriteFile(out, []byte("old"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if _, err := Emit(sampleDocument(), Options{OutPath: out}); err == nil {
		t.Fatalf("expected overwrite refusal")
	}

	if _, err := Emit(sampleDocument(), Options{OutPath: out, Force: true}); err != nil {
		t.Fatalf("emit with force: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) == "old" {
		t.Errorf("force did not overwrite")
	}
}

func TestEmitDryRun(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "api.yaml")
	res, err := Emit(sampleDocument(), Options{OutPath: out, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.Size == 0 {
		t.Errorf("dry-run result has no size")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("dry-run wrote a file")
	}
}

func TestEmitCreatesParentDirectories(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "nested", "dir", "api.json")
	if _, err := Emit(sampleDocument(), Options{OutPath: out}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]Format{
		"":     "",
		"json": FormatJSON,
		"yaml": FormatYAML,
		"yml":  FormatYAML,
		"YAML": FormatYAML,
	}
	for name, want := range cases {
		got, err := ParseFormat(name)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", name, got, err, want)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Errorf("expected error for unsupported format")
	}
}

func TestEmitNilDocument(t *testing.T) {
	t.Parallel()

	if _, err := Emit(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil document")
	}
}
