// Package search composes provider queries from structured filter specs and
// fetches result links from DuckDuckGo's HTML endpoint.
package search

import (
	"net/url"
	"strings"

	"github.com/ibeckermayer/reelscribe/internal/types"
)

// Query is a composed provider query: the term string plus any extra URL
// parameters the provider understands.
type Query struct {
	Terms  string
	Params url.Values
}

// BuildQuery transforms a filter spec into a DuckDuckGo query. Pure and
// deterministic: the same spec always yields the same query.
//
// MinLengthMinutes has no provider encoding and is ignored here.
func BuildQuery(spec types.SearchFilterSpec) Query {
	var b strings.Builder

	keywords := strings.TrimSpace(spec.Keywords)
	if spec.ExactMatch && keywords != "" {
		b.WriteString(`"`)
		b.WriteString(keywords)
		b.WriteString(`"`)
	} else {
		b.WriteString(keywords)
	}

	for _, term := range spec.ExcludedTerms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		b.WriteString(" -")
		b.WriteString(term)
	}

	params := url.Values{}
	if spec.TimeRange != types.TimeRangeNone {
		params.Set("df", string(spec.TimeRange))
	}
	switch spec.SafeSearch {
	case types.SafeSearchStrict:
		params.Set("kp", "1")
	case types.SafeSearchModerate:
		params.Set("kp", "-1")
	}
	// off is the default and is omitted

	return Query{Terms: b.String(), Params: params}
}
