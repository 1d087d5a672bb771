// Package pathplan reconstructs nested directory structure from the
// per-file relative paths a whole-folder upload carries. Paths are
// handled as segment lists, never raw strings, so separator handling
// stays consistent regardless of what the picker produced.
package pathplan

import (
	"sort"
	"strings"
)

// Segments splits a relative path into its non-empty components.
// Both slash styles are accepted; "." and empty segments are dropped.
func Segments(relPath string) []string {
	relPath = strings.ReplaceAll(relPath, `\`, "/")
	parts := strings.Split(relPath, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." {
			continue
		}
		segs = append(segs, p)
	}
	return segs
}

// Join renders segments back into the canonical slash-separated form
// used as plan keys.
func Join(segs []string) string {
	return strings.Join(segs, "/")
}

// DirOf returns the canonical directory path containing relPath, or ""
// when the file sits directly at the upload root.
func DirOf(relPath string) string {
	segs := Segments(relPath)
	if len(segs) <= 1 {
		return ""
	}
	return Join(segs[:len(segs)-1])
}

// Prefix is one distinct directory that must exist before files can be
// uploaded into it.
type Prefix struct {
	// Path is the canonical relative path of the directory ("A/B")
	Path string

	// Parent is the canonical path of the containing directory,
	// "" for depth-1 directories (created under the upload root)
	Parent string

	// Name is the directory's own segment
	Name string

	// Depth counts segments; "A" is 1, "A/B" is 2
	Depth int
}

// Prefixes derives every distinct directory prefix referenced by the
// given relative file paths, ordered parents before children: ascending
// depth, first-seen order within a depth. Creating folders in this
// order guarantees each Prefix's Parent is already resolved.
func Prefixes(relPaths []string) []Prefix {
	seen := make(map[string]int) // path -> first-seen rank
	byPath := make(map[string]Prefix)
	rank := 0

	// Shallow files first so first-seen order inside a depth level
	// matches the order the user sees.
	sorted := make([]string, len(relPaths))
	copy(sorted, relPaths)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(Segments(sorted[i])) < len(Segments(sorted[j]))
	})

	for _, relPath := range sorted {
		segs := Segments(relPath)
		// Every proper prefix of the file path is a directory.
		for depth := 1; depth < len(segs); depth++ {
			p := Join(segs[:depth])
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = rank
			rank++
			byPath[p] = Prefix{
				Path:   p,
				Parent: Join(segs[:depth-1]),
				Name:   segs[depth-1],
				Depth:  depth,
			}
		}
	}

	out := make([]Prefix, 0, len(byPath))
	for p := range byPath {
		out = append(out, byPath[p])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return seen[out[i].Path] < seen[out[j].Path]
	})
	return out
}

// Plan maps canonical directory paths to resolved backend folder ids,
// built incrementally during the folder-creation pass of a directory
// upload.
type Plan struct {
	rootID string
	ids    map[string]string
}

// NewPlan creates a plan rooted at the given backend folder id.
func NewPlan(rootID string) *Plan {
	return &Plan{rootID: rootID, ids: make(map[string]string)}
}

// Set records the backend id created (or adopted) for a directory path.
func (p *Plan) Set(path, folderID string) {
	p.ids[path] = folderID
}

// Resolve returns the backend folder id for a directory path. The empty
// path resolves to the upload root. The second return is false when the
// path was never planned.
func (p *Plan) Resolve(path string) (string, bool) {
	if path == "" {
		return p.rootID, true
	}
	id, ok := p.ids[path]
	return id, ok
}

// ResolveForFile returns the target folder id for a file's relative
// path, falling back to the upload root when its directory is missing
// from the plan.
func (p *Plan) ResolveForFile(relPath string) string {
	if id, ok := p.Resolve(DirOf(relPath)); ok {
		return id
	}
	return p.rootID
}

// Len returns the number of planned directories.
func (p *Plan) Len() int {
	return len(p.ids)
}
