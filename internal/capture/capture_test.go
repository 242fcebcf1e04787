package capture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCapture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requests.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeCapture(t, `[
		{"url": "https://api.example.com/users/1", "method": "GET",
		 "response": {"status": 200, "headers": {"content-type": "application/json"}, "body": "{\"id\":1}"}},
		{"url": "https://api.example.com/users", "method": "POST",
		 "requestHeaders": {"content-type": "application/json"}, "postData": "{\"name\":\"Ann\"}"}
	]`)

	exchanges, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(exchanges) != 2 {
		t.Fatalf("exchanges = %d, want 2", len(exchanges))
	}
	if exchanges[0].Response == nil || exchanges[0].Response.Status != 200 {
		t.Errorf("first response = %+v", exchanges[0].Response)
	}
	if exchanges[1].PostData != `{"name":"Ann"}` {
		t.Errorf("postData = %q", exchanges[1].PostData)
	}
}

func TestLoadRejectsNonArray(t *testing.T) {
	t.Parallel()

	path := writeCapture(t, `{"url": "https://api.example.com"}`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected error for non-array input")
	}
	var ce *CaptureError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T", err)
	}
	if ce.Code != ParseError {
		t.Errorf("code = %q, want ParseError", ce.Code)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	path := writeCapture(t, `[{"url": `)
	_, err := Load(path)
	var ce *CaptureError
	if !errors.As(err, &ce) || ce.Code != ParseError {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	var ce *CaptureError
	if !errors.As(err, &ce) || ce.Code != InputError {
		t.Fatalf("err = %v, want InputError", err)
	}

	_, err = Load("  ")
	if !errors.As(err, &ce) || ce.Code != InputError {
		t.Fatalf("err = %v, want InputError for empty path", err)
	}
}

func TestHeaderLookupIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	headers := map[string]string{"Content-Type": "application/json"}
	if got := Header(headers, "content-type"); got != "application/json" {
		t.Errorf("lookup = %q", got)
	}
	if got := Header(headers, "CONTENT-TYPE"); got != "application/json" {
		t.Errorf("lookup = %q", got)
	}
	if got := Header(headers, "accept"); got != "" {
		t.Errorf("lookup = %q, want empty for missing header", got)
	}
	if got := Header(nil, "content-type"); got != "" {
		t.Errorf("lookup on nil map = %q", got)
	}
}
