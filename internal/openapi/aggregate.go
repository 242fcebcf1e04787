package openapi

import (
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mark3labs/capture2openapi/internal/capture"
)

const (
	// DefaultTitle and DefaultVersion fill info when the caller supplies none.
	DefaultTitle   = "Generated API"
	DefaultVersion = "1.0.0"

	description = "API specification generated from captured network requests"
)

// Options configures aggregation.
type Options struct {
	Title   string
	Version string
	Logger  log.FieldLogger
}

// Aggregate folds captured exchanges, in input order, into a single OpenAPI
// document. Skipped exchanges contribute nothing; the first exchange seen for
// a (path, method) pair governs its summary, request body, and responses,
// while later sightings may only add parameters not yet present by name.
func Aggregate(exchanges []capture.Exchange, opts Options) *Document {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = DefaultTitle
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = DefaultVersion
	}

	paths := make(map[string]PathItem)
	origins := make(map[string]struct{})

	for i, ex := range exchanges {
		parsed, skip := Parse(ex)
		if skip != "" {
			logger.WithFields(log.Fields{"index": i, "url": ex.URL}).Debugf("skipping exchange: %s", skip)
			continue
		}

		if parsed.Origin != "" {
			origins[parsed.Origin] = struct{}{}
		}

		methods := paths[parsed.Path]
		if methods == nil {
			methods = make(PathItem)
			paths[parsed.Path] = methods
		}

		if existing, ok := methods[parsed.Method]; ok {
			existing.Parameters = mergeParameters(existing.Parameters, parsed.Parameters)
			continue
		}
		methods[parsed.Method] = &Operation{
			Summary:     strings.ToUpper(parsed.Method) + " " + parsed.Path,
			Parameters:  parsed.Parameters,
			RequestBody: parsed.RequestBody,
			Responses:   parsed.Responses,
		}
	}

	servers := make([]Server, 0, len(origins))
	for origin := range origins {
		servers = append(servers, Server{URL: origin})
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].URL < servers[j].URL })

	return &Document{
		OpenAPI: "3.0.0",
		Info: Info{
			Title:       title,
			Version:     version,
			Description: description,
		},
		Servers: servers,
		Paths:   paths,
	}
}

// mergeParameters appends incoming parameters whose names are not present
// yet; for names already present the first occurrence wins.
func mergeParameters(existing, incoming []Parameter) []Parameter {
	known := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		known[p.Name] = struct{}{}
	}
	for _, p := range incoming {
		if _, ok := known[p.Name]; ok {
			continue
		}
		known[p.Name] = struct{}{}
		existing = append(existing, p)
	}
	return existing
}
