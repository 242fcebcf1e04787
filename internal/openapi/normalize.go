package openapi

import (
	"net/url"
	"strconv"
	"strings"
)

// Normalize splits a captured URL into its server origin, a templated path,
// and the path parameters discovered along the way.
//
// Variable segments are detected heuristically: all-digit segments become an
// integer {id}, and long opaque segments (length > 20 with a hyphen, or
// exactly 32 characters) become a uuid-formatted string {id}. Every
// qualifying segment is recorded under the single name "id", so a later match
// overwrites an earlier one; /users/3/orders/77 advertises one {id} whose
// example is 77.
func Normalize(rawURL string) (origin string, path string, params map[string]Parameter, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", nil, err
	}
	if u.Host != "" {
		origin = u.Scheme + "://" + u.Host
	}

	segments := strings.Split(u.Path, "/")
	params = make(map[string]Parameter)
	for i, segment := range segments {
		if segment == "" {
			// Leading/trailing slash artifacts stay in place so the
			// rejoined path round-trips.
			continue
		}
		if isAllDigits(segment) {
			// Overflowing int64 falls through to the opaque-id rule.
			if n, perr := strconv.ParseInt(segment, 10, 64); perr == nil {
				segments[i] = "{id}"
				params["id"] = Parameter{
					Name:     "id",
					In:       "path",
					Required: true,
					Schema:   &SchemaNode{Kind: KindInteger},
					Example:  n,
				}
				continue
			}
		}
		if len(segment) > 20 && (strings.Contains(segment, "-") || len(segment) == 32) {
			segments[i] = "{id}"
			params["id"] = Parameter{
				Name:     "id",
				In:       "path",
				Required: true,
				Schema:   &SchemaNode{Kind: KindString, Format: "uuid"},
				Example:  segment,
			}
		}
	}

	return origin, strings.Join(segments, "/"), params, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
