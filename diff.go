package gotara

// DiffResult represents the difference between two versions of a document.
type DiffResult struct {
	// Added contains nodes that are new in the second version.
	Added []TextNode

	// Removed contains nodes that no longer exist in the second version.
	Removed []TextNode

	// Unchanged contains nodes whose text exists in both versions.
	Unchanged []TextNode

	// Modified pairs a removed node with an added node at the same position
	// (same ID) whose text changed.
	Modified []ModifiedNode
}

// ModifiedNode represents a text node that was modified.
type ModifiedNode struct {
	Old TextNode
	New TextNode
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the nodes that have no translation yet: new nodes
// and the new side of modified nodes.
func (d *DiffResult) NeedsTranslation() []TextNode {
	result := make([]TextNode, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	return result
}

// DiffNodes compares two sets of text nodes by hash. A node that disappeared
// and a node that appeared with the same ID are reported as one modification.
// Results keep document order; duplicate texts are reported once.
func DiffNodes(oldNodes, newNodes []TextNode) *DiffResult {
	result := &DiffResult{}

	oldHashes := make(map[string]bool, len(oldNodes))
	for _, node := range oldNodes {
		oldHashes[node.Hash] = true
	}
	newHashes := make(map[string]bool, len(newNodes))
	for _, node := range newNodes {
		newHashes[node.Hash] = true
	}

	var removed []TextNode
	seen := make(map[string]bool)
	for _, node := range oldNodes {
		if seen[node.Hash] {
			continue
		}
		seen[node.Hash] = true
		if newHashes[node.Hash] {
			result.Unchanged = append(result.Unchanged, node)
		} else {
			removed = append(removed, node)
		}
	}

	var added []TextNode
	seen = make(map[string]bool)
	for _, node := range newNodes {
		if seen[node.Hash] || oldHashes[node.Hash] {
			continue
		}
		seen[node.Hash] = true
		added = append(added, node)
	}

	removedByID := make(map[string]int, len(removed))
	for i, node := range removed {
		if node.ID != "" {
			removedByID[node.ID] = i
		}
	}
	matched := make(map[int]bool)
	for _, node := range added {
		if i, ok := removedByID[node.ID]; ok && node.ID != "" && !matched[i] {
			matched[i] = true
			result.Modified = append(result.Modified, ModifiedNode{Old: removed[i], New: node})
			continue
		}
		result.Added = append(result.Added, node)
	}
	for i, node := range removed {
		if !matched[i] {
			result.Removed = append(result.Removed, node)
		}
	}

	return result
}
