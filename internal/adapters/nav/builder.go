// Package nav implements the Navigation Builder: grouping discovered
// pages into sections and computing the book's linear reading order.
package nav

import (
	"sort"

	"github.com/tmoreland/bookweave/internal/core/entities"
	"github.com/tmoreland/bookweave/internal/core/usecases"
)

// Builder implements usecases.NavBuilder.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder { return &Builder{} }

var _ usecases.NavBuilder = (*Builder)(nil)

// Build groups pages by SectionKey, sorts each section's pages per
// entities.SortPages, and orders sections with the root section (key "")
// first, then every named section alphabetically by key. rootSectionLabel
// is the display title for the root section.
func (b *Builder) Build(pages []*entities.SourcePage, rootSectionLabel string) *entities.NavModel {
	bySection := map[string][]*entities.SourcePage{}
	for _, p := range pages {
		bySection[p.SectionKey] = append(bySection[p.SectionKey], p)
	}

	var keys []string
	for k := range bySection {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sections []*entities.Section
	if rootPages, ok := bySection[""]; ok {
		entities.SortPages(rootPages)
		sections = append(sections, &entities.Section{Key: "", Title: rootSectionLabel, Pages: rootPages})
	}
	for _, k := range keys {
		secPages := bySection[k]
		entities.SortPages(secPages)
		sections = append(sections, &entities.Section{Key: k, Title: entities.PrettifyKey(k), Pages: secPages})
	}

	var linear []*entities.SourcePage
	for _, s := range sections {
		linear = append(linear, s.Pages...)
	}

	return &entities.NavModel{Sections: sections, Linear: linear}
}
