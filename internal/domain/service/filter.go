package service

import (
	"path"
	"strings"

	"github.com/pwrtux/moodle-magnet/internal/domain/course"
)

// ExtractFiles walks a content tree depth-first and returns its downloadable
// file leaves in stable tree order, matching the section and module order of
// the course page.
func ExtractFiles(root *course.Node) []*course.Node {
	var files []*course.Node
	root.Walk(func(n *course.Node) {
		if n.IsFile() {
			files = append(files, n)
		}
	})
	return files
}

// Filter selects files by extension. A nil or empty allowlist admits
// everything; matching is case-insensitive.
type Filter struct {
	extensions map[string]bool
}

// NewFilter builds a filter from an extension allowlist. Entries may carry
// a leading dot or not ("pdf" and ".pdf" are equivalent).
func NewFilter(extensions []string) *Filter {
	f := &Filter{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = true
	}
	return f
}

// Matches reports whether a filename passes the allowlist
func (f *Filter) Matches(filename string) bool {
	if len(f.extensions) == 0 {
		return true
	}
	return f.extensions[strings.ToLower(path.Ext(filename))]
}

// Apply keeps the nodes whose filename passes the allowlist, preserving order
func (f *Filter) Apply(nodes []*course.Node) []*course.Node {
	if len(f.extensions) == 0 {
		return nodes
	}

	var kept []*course.Node
	for _, n := range nodes {
		if f.Matches(n.FileName) {
			kept = append(kept, n)
		}
	}
	return kept
}
