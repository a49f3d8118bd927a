// Package link detects document-hub URLs in markdown and rewrites them to
// relative paths inside the local mirror.
//
// This package handles:
//   - Classification of a URL against an ordered table of link patterns
//   - Scanning markdown content for inline links, including nested ones
//   - Rewriting resolvable links while leaving the rest of the text untouched
package link
