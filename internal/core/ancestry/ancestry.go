// Package ancestry resolves breadcrumb chains from the flat folder index.
package ancestry

import "github.com/Jahid786-lang/vensar-drive/internal/domain"

// Resolve returns the ordered chain from the synthetic Home root to the
// folder with the given id, inclusive. An empty folderID yields just the
// Home crumb.
//
// The walk follows ParentID pointers and stops as soon as a parent
// cannot be resolved, so a dangling reference truncates the chain
// instead of failing. It also never visits more than len(index) records:
// a cyclic listing (which a well-behaved backend never produces) ends
// the walk rather than hanging it.
func Resolve(folderID string, index map[string]domain.FolderRecord) []domain.Crumb {
	chain := []domain.Crumb{domain.HomeCrumb()}
	if folderID == domain.RootFolderID {
		return chain
	}

	// Collect leaf-to-root, bounded by the index size.
	reversed := make([]domain.Crumb, 0, 8)
	id := folderID
	for steps := 0; steps < len(index); steps++ {
		rec, ok := index[id]
		if !ok {
			break
		}
		reversed = append(reversed, domain.Crumb{ID: rec.ID, Name: rec.Name, Path: rec.Path})
		if rec.ParentID == domain.RootFolderID || rec.ParentID == rec.ID {
			break
		}
		id = rec.ParentID
	}

	for i := len(reversed) - 1; i >= 0; i-- {
		chain = append(chain, reversed[i])
	}
	return chain
}

// Depth returns the depth of a folder below the root, 0 for the root
// itself. Derived from the resolved chain so it shares its tolerance of
// broken listings.
func Depth(folderID string, index map[string]domain.FolderRecord) int {
	return len(Resolve(folderID, index)) - 1
}
