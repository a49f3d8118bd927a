// Package catalog indexes the files written for one sync run by page id,
// canonical URL and document id.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// Entry describes one written markdown file.
type Entry struct {
	ID           string `json:"id"`
	DocumentID   string `json:"documentId"`
	WorkspaceID  string `json:"workspaceId"`
	OriginalURL  string `json:"originalUrl,omitempty"`
	Name         string `json:"name"`
	AbsolutePath string `json:"absolutePath"`
	ParentID     string `json:"parentId,omitempty"`
}

// Target is where a link resolves to.
type Target struct {
	AbsolutePath string `json:"absolutePath"`
	Name         string `json:"name"`
}

// PageMapping is the flattened read view used to rewrite links. Keys are
// page ids, canonical URLs and document ids.
type PageMapping map[string]Target

// Catalog is an append-only index of written files.
//
// It is not safe for concurrent use; it is filled while materializing and
// only read afterwards.
type Catalog struct {
	entries    []*Entry
	byID       map[string]*Entry
	byURL      map[string]*Entry
	byDocument map[string][]*Entry
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		byID:       make(map[string]*Entry),
		byURL:      make(map[string]*Entry),
		byDocument: make(map[string][]*Entry),
	}
}

// Add indexes e. It reports true when an entry with the same id already
// existed; the later entry wins.
func (c *Catalog) Add(e Entry) bool {
	n := &e
	old, replaced := c.byID[e.ID]
	if replaced {
		i := slices.Index(c.entries, old)
		c.entries[i] = n
		if old.OriginalURL != "" && c.byURL[old.OriginalURL] == old {
			delete(c.byURL, old.OriginalURL)
		}
		docs := c.byDocument[old.DocumentID]
		if j := slices.Index(docs, old); j >= 0 {
			c.byDocument[old.DocumentID] = slices.Delete(docs, j, j+1)
		}
	} else {
		c.entries = append(c.entries, n)
	}
	c.byID[e.ID] = n
	if e.OriginalURL != "" {
		c.byURL[e.OriginalURL] = n
	}
	c.byDocument[e.DocumentID] = append(c.byDocument[e.DocumentID], n)
	return replaced
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// ByID returns the entry for a page or document id.
func (c *Catalog) ByID(id string) (Entry, bool) {
	if e, ok := c.byID[id]; ok {
		return *e, true
	}
	return Entry{}, false
}

// ByURL returns the entry whose canonical URL is u.
func (c *Catalog) ByURL(u string) (Entry, bool) {
	if e, ok := c.byURL[u]; ok {
		return *e, true
	}
	return Entry{}, false
}

// ByDocumentID returns the entries of a document in insertion order.
func (c *Catalog) ByDocumentID(documentID string) []Entry {
	docs := c.byDocument[documentID]
	out := make([]Entry, len(docs))
	for i, e := range docs {
		out[i] = *e
	}
	return out
}

// DocumentEntry returns the entry representing a whole document: the first
// entry without a parent, else the first entry of the document.
func (c *Catalog) DocumentEntry(documentID string) (Entry, bool) {
	docs := c.byDocument[documentID]
	if len(docs) == 0 {
		return Entry{}, false
	}
	for _, e := range docs {
		if e.ParentID == "" {
			return *e, true
		}
	}
	return *docs[0], true
}

// Entries returns all entries in insertion order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = *e
	}
	return out
}

// PageMapping returns the lookup table for the link rewriter.
func (c *Catalog) PageMapping() PageMapping {
	m := make(PageMapping, 2*len(c.entries)+len(c.byDocument))
	for _, e := range c.entries {
		t := Target{AbsolutePath: e.AbsolutePath, Name: e.Name}
		m[e.ID] = t
		if e.OriginalURL != "" {
			m[e.OriginalURL] = t
		}
	}
	for docID := range c.byDocument {
		if _, ok := m[docID]; ok {
			continue
		}
		if e, ok := c.DocumentEntry(docID); ok {
			m[docID] = Target{AbsolutePath: e.AbsolutePath, Name: e.Name}
		}
	}
	return m
}

// Dump writes the catalog and its page mapping as indented JSON to path.
func (c *Catalog) Dump(path string) error {
	out := struct {
		Entries     []Entry     `json:"entries"`
		PageMapping PageMapping `json:"pageMapping"`
	}{
		Entries:     c.Entries(),
		PageMapping: c.PageMapping(),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // G306: 0o644 is intentional for readable files
}
