// Package transform applies the transformation markers of a document tree.
//
// An Engine dispatches every node to the Transform registered under the
// marker's name (plain nodes get BaseTransform), recursing into children
// left to right. Hooks may replace the node they run on and ask for a rescan.
// A rescan restarts the current dispatch when it has no parent and is handed
// to the caller otherwise, so freshly included subtrees are processed from
// the top of the document.
//
// Four transforms are built in: env_var, include_ast, compute_heading_levels
// and prune_heading_levels.
package transform
