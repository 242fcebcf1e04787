package openapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/capture2openapi/internal/capture"
)

// staticAssetMarkers excludes non-API traffic. The substring match is loose
// on purpose: it catches asset URLs with cache-busting query strings too.
var staticAssetMarkers = []string{".css", ".js", ".png", ".jpg", ".gif", ".svg", ".woff", ".ttf"}

// ParsedOperation is one exchange's contribution to the aggregated document.
type ParsedOperation struct {
	Origin      string
	Path        string
	Method      string
	Parameters  []Parameter // path first, then query, deduplicated by name
	RequestBody *RequestBody
	Responses   map[string]*ResponseItem
}

// Parse turns one captured exchange into an operation descriptor. A non-empty
// skip reason means the exchange contributes nothing to the document; parsing
// never fails the whole aggregation. An operation is either fully built or
// skipped, never half-built.
func Parse(ex capture.Exchange) (parsed *ParsedOperation, skip string) {
	defer func() {
		if r := recover(); r != nil {
			parsed, skip = nil, fmt.Sprintf("unexpected failure: %v", r)
		}
	}()
	return parseExchange(ex)
}

func parseExchange(ex capture.Exchange) (*ParsedOperation, string) {
	for _, marker := range staticAssetMarkers {
		if strings.Contains(ex.URL, marker) {
			return nil, fmt.Sprintf("static asset (%s)", marker)
		}
	}

	origin, path, pathParams, err := Normalize(ex.URL)
	if err != nil {
		return nil, fmt.Sprintf("unparsable URL: %v", err)
	}

	method := strings.ToLower(strings.TrimSpace(ex.Method))
	if method == "" {
		method = "get"
	}

	var parameters []Parameter
	if p, ok := pathParams["id"]; ok {
		parameters = append(parameters, p)
	}
	parameters = append(parameters, queryParameters(ex.URL)...)

	return &ParsedOperation{
		Origin:      origin,
		Path:        path,
		Method:      method,
		Parameters:  parameters,
		RequestBody: requestBody(ex),
		Responses:   responses(ex),
	}, ""
}

// queryParameters yields one string-typed parameter per distinct query key,
// in query-string order, with the first value as example. Keys without a
// value are dropped.
func queryParameters(rawURL string) []Parameter {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var params []Parameter
	for _, pair := range strings.Split(u.RawQuery, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if decoded, derr := url.QueryUnescape(key); derr == nil {
			key = decoded
		}
		if decoded, derr := url.QueryUnescape(value); derr == nil {
			value = decoded
		}
		if key == "" || value == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		params = append(params, Parameter{
			Name:    key,
			In:      "query",
			Schema:  &SchemaNode{Kind: KindString},
			Example: value,
		})
	}
	return params
}

// requestBody interprets the request payload only when it is declared JSON;
// a payload that fails to parse is omitted rather than treated as an error.
func requestBody(ex capture.Exchange) *RequestBody {
	if ex.PostData == "" {
		return nil
	}
	contentType := capture.Header(ex.RequestHeaders, "content-type")
	if !strings.Contains(contentType, "application/json") {
		return nil
	}
	value, err := DecodeValue([]byte(ex.PostData))
	if err != nil {
		return nil
	}
	return &RequestBody{
		Content: map[string]*MediaType{
			"application/json": {Schema: Infer(value, false)},
		},
	}
}

// responses documents the observed response under its actual status code when
// the body is parseable JSON, and falls back to a generic 200 entry otherwise.
func responses(ex capture.Exchange) map[string]*ResponseItem {
	generic := map[string]*ResponseItem{
		"200": {Description: "Successful response"},
	}

	if ex.Response == nil || ex.Response.Body == "" {
		return generic
	}
	contentType := capture.Header(ex.Response.Headers, "content-type")
	if !strings.Contains(contentType, "application/json") {
		return generic
	}
	value, err := DecodeValue([]byte(ex.Response.Body))
	if err != nil {
		return generic
	}

	status := ex.Response.Status
	if status <= 0 {
		status = 200
	}
	return map[string]*ResponseItem{
		strconv.Itoa(status): {
			Description: "Successful response",
			Content: map[string]*MediaType{
				"application/json": {Schema: Infer(value, false)},
			},
		},
	}
}
