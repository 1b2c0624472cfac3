package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
//
// The mapping is designed with these priorities:
//  1. Prefix-friendly matching on usernames and names (simple analyzer,
//     no stemming - "alic" must match "alice")
//  2. Exact keyword matching for the type filter
//  3. Numeric fields for sorting by member count and recency
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	// Names are identifiers, not prose; the simple analyzer lowercases
	// without stemming which keeps prefix queries predictable.
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - username or group name, primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	nicknameFieldMapping := bleve.NewTextFieldMapping()
	nicknameFieldMapping.Analyzer = simple.Name
	nicknameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("nickname", nicknameFieldMapping)

	firstNameFieldMapping := bleve.NewTextFieldMapping()
	firstNameFieldMapping.Analyzer = simple.Name
	firstNameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("first_name", firstNameFieldMapping)

	lastNameFieldMapping := bleve.NewTextFieldMapping()
	lastNameFieldMapping.Analyzer = simple.Name
	lastNameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("last_name", lastNameFieldMapping)

	// Email - keyword analyzer keeps the address intact for exact lookup
	emailFieldMapping := bleve.NewTextFieldMapping()
	emailFieldMapping.Analyzer = keyword.Name
	emailFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("email", emailFieldMapping)

	positionFieldMapping := bleve.NewTextFieldMapping()
	positionFieldMapping.Analyzer = simple.Name
	positionFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("position", positionFieldMapping)

	// Group display name - searchable alongside name
	displayNameFieldMapping := bleve.NewTextFieldMapping()
	displayNameFieldMapping.Analyzer = simple.Name
	displayNameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("display_name", displayNameFieldMapping)

	// Description - searchable but not stored
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = simple.Name
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// --- Keyword fields (exact match) ---

	// Type - for filtering by document type
	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Deleted - boolean filter for deactivated profiles
	deletedFieldMapping := bleve.NewBooleanFieldMapping()
	deletedFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("deleted", deletedFieldMapping)

	// --- Numeric fields (sorting) ---

	memberCountFieldMapping := bleve.NewNumericFieldMapping()
	memberCountFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("member_count", memberCountFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
