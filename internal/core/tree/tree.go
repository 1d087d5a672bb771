// Package tree derives a navigable folder forest from the flat folder
// listing the backend delivers. Building is pure and deterministic: the
// same flat list always yields the same forest, and the output never
// aliases previously built nodes.
package tree

import (
	"sort"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
)

// Build converts a flat folder listing into an ordered forest.
//
// Each record is wrapped exactly once; a record whose ParentID is empty
// or refers to an id absent from the input becomes a root. The server
// owns referential integrity, so dangling parents are tolerated rather
// than rejected - the node is promoted to root and the UI stays usable
// against an inconsistent listing.
//
// Siblings (and roots) are sorted by Order ascending; ties keep their
// input order. O(n log n) overall.
func Build(flat []domain.FolderRecord) []*domain.FolderNode {
	if len(flat) == 0 {
		return []*domain.FolderNode{}
	}

	// First pass: wrap every record.
	index := make(map[string]*domain.FolderNode, len(flat))
	pos := make(map[string]int, len(flat))
	for i, rec := range flat {
		index[rec.ID] = &domain.FolderNode{FolderRecord: rec}
		pos[rec.ID] = i
	}

	// Second pass: attach to parents, in input order so insertion
	// order is meaningful for the stable sort below.
	roots := make([]*domain.FolderNode, 0, len(flat))
	for _, rec := range flat {
		node := index[rec.ID]
		parent, ok := index[rec.ParentID]
		if rec.ParentID == domain.RootFolderID || !ok || rec.ParentID == rec.ID {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortSiblings(roots)
	for _, node := range index {
		sortSiblings(node.Children)
	}

	return roots
}

// Index builds the id->record map the ancestry resolver walks.
func Index(flat []domain.FolderRecord) map[string]domain.FolderRecord {
	index := make(map[string]domain.FolderRecord, len(flat))
	for _, rec := range flat {
		index[rec.ID] = rec
	}
	return index
}

// Count returns the total number of nodes in a forest.
func Count(roots []*domain.FolderNode) int {
	total := 0
	for _, r := range roots {
		total += 1 + Count(r.Children)
	}
	return total
}

// Walk visits every node of the forest depth-first in display order.
// The visitor receives the node and its depth (roots are depth 0).
func Walk(roots []*domain.FolderNode, visit func(node *domain.FolderNode, depth int)) {
	var walk func(nodes []*domain.FolderNode, depth int)
	walk = func(nodes []*domain.FolderNode, depth int) {
		for _, n := range nodes {
			visit(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(roots, 0)
}

// sortSiblings orders nodes by Order ascending, preserving relative
// input order for equal keys.
func sortSiblings(nodes []*domain.FolderNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Order < nodes[j].Order
	})
}
