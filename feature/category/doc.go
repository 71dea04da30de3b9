// Package category implements the category-tree regeneration job.
//
// A run starts at one category in one store view, walks its descendants level
// by level, rebuilds every stored url_path from the url keys of the ancestor
// chain and then regenerates the canonical rewrites of the whole subtree.
package category
