// Writes a document page tree to the file system and catalogs every file.

package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/maruel/clickwiki/internal/catalog"
	"github.com/maruel/clickwiki/internal/link"
)

var (
	// ErrInvalidName is returned when a page has an empty name.
	ErrInvalidName = errors.New("invalid page name")
	// ErrMissingID is returned when a page or document has no id.
	ErrMissingID = errors.New("missing id")
)

// Materializer writes document trees under OutputDir.
type Materializer struct {
	OutputDir string
	// Host is used to build the canonical URL of each page. Empty disables
	// URL keys in the catalog.
	Host    string
	Catalog *catalog.Catalog

	// docDirs maps a lowercased document folder to the document owning it.
	docDirs map[string]string
}

// NewMaterializer creates a materializer writing under outputDir.
func NewMaterializer(outputDir, host string, cat *catalog.Catalog) *Materializer {
	return &Materializer{OutputDir: outputDir, Host: host, Catalog: cat}
}

// Result summarizes one Materialize call.
type Result struct {
	// Dir is the absolute path of the document folder.
	Dir     string
	Entries []catalog.Entry
	Dirs    int
}

// Files returns the number of markdown files written.
func (r *Result) Files() int {
	return len(r.Entries)
}

// Materialize writes doc under the output directory.
//
// Leaf pages become <dir>/<name>.md. Pages with children become a directory
// <dir>/<name>/ holding <name>.md when the page has content. Every written
// file is added to the catalog.
//
// All names are checked before anything is written; one unnamed page fails
// the whole document.
func (m *Materializer) Materialize(ctx context.Context, doc *Document) (*Result, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(m.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	name := doc.Name
	if strings.TrimSpace(name) == "" {
		name = doc.ID
	}
	w := &treeWriter{m: m, doc: doc, res: &Result{Dir: m.documentDir(root, SanitizeName(name), doc.ID)}}
	if err := w.mkdir(w.res.Dir); err != nil {
		return nil, err
	}
	parentID := ""
	if !doc.Synthetic {
		parentID = doc.ID
		if doc.Content != "" {
			base := filepath.Base(w.res.Dir) + ".md"
			path := filepath.Join(w.res.Dir, base)
			w.used(w.res.Dir, base)
			if err := w.writePage(ctx, &doc.Node, path, "", link.DocumentURL(m.Host, doc.WorkspaceID, doc.ID)); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range doc.Children {
		if err := w.writeNode(ctx, n, w.res.Dir, parentID); err != nil {
			return nil, err
		}
	}
	slog.DebugContext(ctx, "Materialized document", "doc", doc.ID, "dir", w.res.Dir, "files", w.res.Files(), "dirs", w.res.Dirs)
	return w.res, nil
}

// documentDir returns the folder for a document, disambiguating two
// documents that sanitize to the same name.
func (m *Materializer) documentDir(root, name, docID string) string {
	if m.docDirs == nil {
		m.docDirs = make(map[string]string)
	}
	dir := filepath.Join(root, name)
	if owner, ok := m.docDirs[strings.ToLower(dir)]; ok && owner != docID {
		dir = filepath.Join(root, name+"_"+SanitizeName(docID))
	}
	m.docDirs[strings.ToLower(dir)] = docID
	return dir
}

func validate(doc *Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document %q", ErrMissingID, doc.Name)
	}
	var err error
	walkNodes(doc.Children, 1, func(n *Node, _ int) {
		if err != nil {
			return
		}
		switch {
		case n.ID == "":
			err = fmt.Errorf("%w: page %q in document %s", ErrMissingID, n.Name, doc.ID)
		case strings.TrimSpace(n.Name) == "":
			err = fmt.Errorf("%w: page %s in document %s has no name", ErrInvalidName, n.ID, doc.ID)
		}
	})
	return err
}

// treeWriter holds the state of one Materialize call.
type treeWriter struct {
	m     *Materializer
	doc   *Document
	res   *Result
	names map[string]bool
}

func (w *treeWriter) writeNode(ctx context.Context, n *Node, dir, parentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := SanitizeName(n.Name)
	url := ""
	if w.doc.WorkspaceID != "" && w.m.Host != "" {
		url = link.PageURL(w.m.Host, w.doc.WorkspaceID, w.doc.ID, n.ID)
	}
	if len(n.Children) == 0 {
		if w.used(dir, name+".md") {
			name += "_" + SanitizeName(n.ID)
			w.used(dir, name+".md")
		}
		return w.writePage(ctx, n, filepath.Join(dir, name+".md"), parentID, url)
	}
	if w.used(dir, name) {
		name += "_" + SanitizeName(n.ID)
		w.used(dir, name)
	}
	sub := filepath.Join(dir, name)
	if err := w.mkdir(sub); err != nil {
		return err
	}
	if n.Content != "" {
		// Reserve the page's own file so a child with the same name is renamed.
		w.used(sub, name+".md")
		if err := w.writePage(ctx, n, filepath.Join(sub, name+".md"), parentID, url); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := w.writeNode(ctx, c, sub, n.ID); err != nil {
			return err
		}
	}
	return nil
}

// used marks dir/base as taken and reports whether it already was. The
// comparison ignores case so the layout is stable on case-insensitive file
// systems.
func (w *treeWriter) used(dir, base string) bool {
	if w.names == nil {
		w.names = make(map[string]bool)
	}
	key := strings.ToLower(filepath.Join(dir, base))
	if w.names[key] {
		return true
	}
	w.names[key] = true
	return false
}

func (w *treeWriter) mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create directory: %w", err)
	}
	w.res.Dirs++
	return nil
}

func (w *treeWriter) writePage(ctx context.Context, n *Node, path, parentID, url string) error {
	if err := os.WriteFile(path, []byte(n.Content), 0o644); err != nil { //nolint:gosec // G306: 0o644 is intentional for readable files
		return fmt.Errorf("failed to write page %s: %w", n.ID, err)
	}
	if w.m.Host == "" || w.doc.WorkspaceID == "" {
		url = ""
	}
	e := catalog.Entry{
		ID:           n.ID,
		DocumentID:   w.doc.ID,
		WorkspaceID:  w.doc.WorkspaceID,
		OriginalURL:  url,
		Name:         n.Name,
		AbsolutePath: path,
		ParentID:     parentID,
	}
	if w.m.Catalog != nil && w.m.Catalog.Add(e) {
		slog.WarnContext(ctx, "Duplicate page id", "page", n.ID, "doc", w.doc.ID, "path", path)
	}
	w.res.Entries = append(w.res.Entries, e)
	return nil
}
