package entities

import (
	"html/template"
	"sort"
	"strings"
)

// SourcePage is one discovered Markdown file.
type SourcePage struct {
	InputPath  string // absolute path on disk
	OutputPath string // output-relative path, .md rewritten to .html
	Title      string
	SectionKey string // top-level input directory name, or "" for root
}

// Section groups pages sharing a top-level input directory.
type Section struct {
	Key   string
	Title string
	Pages []*SourcePage
}

// NavModel is the navigation computed by the Navigation Builder:
// pages grouped into sections plus their linear reading order.
type NavModel struct {
	Sections []*Section
	Linear   []*SourcePage
}

// PrevNext returns the pages immediately before and after page in linear
// reading order. Either return value is nil at the ends; the order never wraps.
func (n *NavModel) PrevNext(page *SourcePage) (prev, next *SourcePage) {
	for i, p := range n.Linear {
		if p == page {
			if i > 0 {
				prev = n.Linear[i-1]
			}
			if i < len(n.Linear)-1 {
				next = n.Linear[i+1]
			}
			return prev, next
		}
	}
	return nil, nil
}

// RenderContext is the value passed to the "page" template.
type RenderContext struct {
	Title       string
	Content     template.HTML
	OutputPath  string
	Prev        *SourcePage
	Next        *SourcePage
	Nav         *NavModel
	Book        BookConfig
	HasIndex    bool
	CurrentPath string
	// RootPrefix is the relative path back to the output root from
	// OutputPath's directory ("", "../", "../../", ...), so templates can
	// link to root-relative assets (css/js) and pages from any nesting depth.
	RootPrefix string
}

// RootPrefixFor returns the relative path back to the output root from
// outputPath's directory: "" at the root, "../" one level down, and so on.
func RootPrefixFor(outputPath string) string {
	depth := strings.Count(outputPath, "/")
	return strings.Repeat("../", depth)
}

// sortKey returns the key used to order pages within a section:
// "index"/"README" stems sort first, then case-insensitive path order.
func (p *SourcePage) sortKey() (rank int, key string) {
	stem := strings.TrimSuffix(strings.ToLower(lastPathComponent(p.OutputPath)), ".html")
	if stem == "index" || stem == "readme" {
		return 0, strings.ToLower(p.OutputPath)
	}
	return 1, strings.ToLower(p.OutputPath)
}

func lastPathComponent(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// SortPages orders pages in place per the Navigation Builder's intra-section rule.
func SortPages(pages []*SourcePage) {
	sort.SliceStable(pages, func(i, j int) bool {
		ri, ki := pages[i].sortKey()
		rj, kj := pages[j].sortKey()
		if ri != rj {
			return ri < rj
		}
		return ki < kj
	})
}

// PrettifyKey turns a directory name like "getting-started" into a display
// title like "Getting Started", used for a Section's Title when none is configured.
func PrettifyKey(key string) string {
	if key == "" {
		return ""
	}
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
