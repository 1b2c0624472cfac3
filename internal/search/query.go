package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string   // User's search query
	Types []string // Document types to include (empty = all)

	// AllowInactive includes deactivated profiles and archived groups.
	AllowInactive bool

	// Pagination
	Limit  int
	Offset int
}

// DefaultSearchParams returns sensible defaults for autocomplete.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:  50,
		Offset: 0,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID          string  `json:"id"`
	Type        DocType `json:"type"`
	Score       float64 `json:"score"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name,omitempty"`
	MemberCount int     `json:"member_count,omitempty"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	searchRequest.SortBy([]string{"-_score", "name"})
	searchRequest.Fields = []string{"id", "type", "name", "display_name", "member_count"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if dn, ok := hit.Fields["display_name"].(string); ok {
			searchHit.DisplayName = dn
		}
		if mc, ok := hit.Fields["member_count"].(float64); ok {
			searchHit.MemberCount = int(mc)
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query. Autocomplete leans on prefix matches: a user who
	// has typed "al" wants alice and Alison, so prefix queries on every
	// name field carry the highest boost. Match and fuzzy queries catch
	// full words and typos respectively.
	if params.Query != "" {
		term := strings.ToLower(params.Query)
		textQueries := []query.Query{}

		for _, field := range []string{"name", "nickname", "first_name", "last_name", "display_name"} {
			prefixQuery := bleve.NewPrefixQuery(term)
			prefixQuery.SetField(field)
			prefixQuery.SetBoost(3.0)
			textQueries = append(textQueries, prefixQuery)
		}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(2.0)
		textQueries = append(textQueries, nameMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.5)
		textQueries = append(textQueries, fuzzyQuery)

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Type filter
	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	// Hide deactivated entries unless explicitly requested
	if !params.AllowInactive {
		deleted := false
		activeQuery := bleve.NewBoolFieldQuery(deleted)
		activeQuery.SetField("deleted")
		queries = append(queries, activeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
