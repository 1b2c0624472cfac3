// Package search provides full-text search over user profiles and groups
// using Bleve. It powers autocomplete in invite flows with prefix and fuzzy
// matching on names and usernames.
package search

import (
	"github.com/relaychat/relay-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeProfile DocType = "profile"
	DocTypeGroup   DocType = "group"
)

// SearchDocument is the unified document structure for the Bleve index.
// Profiles and groups are indexed together with type discrimination so a
// single query can feed a mixed autocomplete list.
type SearchDocument struct {
	// Identity
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Primary searchable text: username for profiles, name for groups.
	Name string `json:"name"`

	// Profile-specific fields (empty for groups)
	Nickname  string `json:"nickname,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Position  string `json:"position,omitempty"`

	// Group-specific fields
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"member_count,omitempty"`

	// Deleted flags deactivated profiles and archived groups. They stay
	// in the index so allow-inactive searches can still find them.
	Deleted bool `json:"deleted"`

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"deleted":    d.Deleted,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Nickname != "" {
		m["nickname"] = d.Nickname
	}
	if d.FirstName != "" {
		m["first_name"] = d.FirstName
	}
	if d.LastName != "" {
		m["last_name"] = d.LastName
	}
	if d.Email != "" {
		m["email"] = d.Email
	}
	if d.Position != "" {
		m["position"] = d.Position
	}
	if d.DisplayName != "" {
		m["display_name"] = d.DisplayName
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.MemberCount > 0 {
		m["member_count"] = d.MemberCount
	}

	return m
}

// ProfileToSearchDocument converts a domain User to a SearchDocument.
func ProfileToSearchDocument(user *domain.User) *SearchDocument {
	return &SearchDocument{
		ID:        user.ID,
		Type:      DocTypeProfile,
		Name:      user.Username,
		Nickname:  user.Nickname,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Position:  user.Position,
		Deleted:   !user.IsActive(),
		CreatedAt: user.CreateAt,
		UpdatedAt: user.UpdateAt,
	}
}

// GroupToSearchDocument converts a domain Group to a SearchDocument.
func GroupToSearchDocument(group *domain.Group) *SearchDocument {
	return &SearchDocument{
		ID:          group.ID,
		Type:        DocTypeGroup,
		Name:        group.Name,
		DisplayName: group.DisplayName,
		Description: group.Description,
		MemberCount: group.MemberCount,
		Deleted:     !group.IsActive(),
		CreatedAt:   group.CreateAt,
		UpdatedAt:   group.UpdateAt,
	}
}
