package lineitems

import (
	"strings"

	"golang.org/x/text/cases"
)

// Entity is a read-only catalog record, typically a product.
type Entity struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CategoryName string `json:"categoryName,omitempty"`
	BrandName    string `json:"brandName,omitempty"`
}

// Label composes the display text shown next to a search result.
func (e Entity) Label() string {
	var extra []string
	if e.BrandName != "" {
		extra = append(extra, e.BrandName)
	}
	if e.CategoryName != "" {
		extra = append(extra, e.CategoryName)
	}
	if len(extra) == 0 {
		return e.Name
	}
	return e.Name + " (" + strings.Join(extra, " / ") + ")"
}

// Search filters entities whose name contains query, ignoring case.
// Relative order is preserved and an empty query returns the input unchanged.
func Search(entities []Entity, query string) []Entity {
	return search(entities, query, false)
}

// SearchAll is Search extended to the brand and category names.
func SearchAll(entities []Entity, query string) []Entity {
	return search(entities, query, true)
}

func search(entities []Entity, query string, secondary bool) []Entity {
	query = strings.TrimSpace(query)
	if query == "" {
		return entities
	}
	fold := cases.Fold()
	needle := fold.String(query)
	matches := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if strings.Contains(fold.String(e.Name), needle) {
			matches = append(matches, e)
			continue
		}
		if !secondary {
			continue
		}
		if strings.Contains(fold.String(e.BrandName), needle) || strings.Contains(fold.String(e.CategoryName), needle) {
			matches = append(matches, e)
		}
	}
	return matches
}

// FindEntity returns the entity with id.
func FindEntity(entities []Entity, id int64) (Entity, bool) {
	for _, e := range entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}
