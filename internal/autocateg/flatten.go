package autocateg

import (
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/catalog"
)

// FlatCategory is one category-tree node detached from the tree: breadcrumb
// path, expanded keyword set and depth, ready for linear scanning. Built
// once per run and not mutated afterwards.
type FlatCategory struct {
	Slug       string
	Name       string
	FullPath   string
	Keywords   []string
	Depth      int
	ParentSlug string
}

// Flatten walks the category tree in pre-order (parent before children,
// children in catalog order) and returns the flat list the scorer scans.
// The traversal order is part of the engine's contract: best-match ties go
// to the earlier category.
func Flatten(tree []catalog.CategoryNode) []FlatCategory {
	var flat []FlatCategory
	for _, root := range tree {
		flat = appendFlat(flat, root, "", 0, "")
	}
	return flat
}

func appendFlat(flat []FlatCategory, node catalog.CategoryNode, parentPath string, depth int, parentSlug string) []FlatCategory {
	fullPath := node.Name
	if parentPath != "" {
		fullPath = parentPath + " > " + node.Name
	}

	flat = append(flat, FlatCategory{
		Slug:       node.Slug,
		Name:       node.Name,
		FullPath:   fullPath,
		Keywords:   ExpandKeywords(node.Name),
		Depth:      depth,
		ParentSlug: parentSlug,
	})

	for _, child := range node.Children {
		flat = appendFlat(flat, child, fullPath, depth+1, node.Slug)
	}
	return flat
}
