// Package wiki writes document page trees as folders of markdown files.
//
// This package handles:
//   - The page tree types returned by the fetch client
//   - Materialization of a tree into a deterministic directory layout
//   - Name sanitization and discovery of written markdown files
package wiki
