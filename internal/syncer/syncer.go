// Package syncer mirrors documents to markdown files in two phases: write
// every reachable document, then rewrite links against the final catalog.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/maruel/clickwiki/internal/catalog"
	"github.com/maruel/clickwiki/internal/link"
	"github.com/maruel/clickwiki/internal/wiki"
)

// ErrNoSeeds is returned when Run is called without document URLs.
var ErrNoSeeds = errors.New("no seed document URLs")

// DebugCatalogFile is the catalog dump written in debug mode.
const DebugCatalogFile = "catalog-debug.json"

// Fetcher retrieves a document tree.
type Fetcher interface {
	FetchDocument(ctx context.Context, workspaceID, documentID string, maxDepth int) (*wiki.Document, error)
}

// Options configures a Syncer.
type Options struct {
	OutputDir string
	// Host is used to build canonical URLs for catalog keys.
	Host string
	// MaxPageDepth is passed to the fetcher; -1 is unlimited.
	MaxPageDepth int
	// MaxDocumentDepth bounds how many cross-document hops are followed from
	// a seed; 0 syncs only the seeds and -1 is unlimited.
	MaxDocumentDepth int
	// Debug dumps the catalog and logs every rewritten link.
	Debug bool
}

// Syncer orchestrates fetching, materialization and link rewriting.
type Syncer struct {
	fetcher  Fetcher
	opts     Options
	progress ProgressReporter
}

// New creates a new syncer.
func New(fetcher Fetcher, opts Options, progress ProgressReporter) *Syncer {
	if progress == nil {
		progress = &NullProgress{}
	}
	return &Syncer{fetcher: fetcher, opts: opts, progress: progress}
}

// run holds the state of one Run call.
type run struct {
	cat     *catalog.Catalog
	mat     *wiki.Materializer
	visited map[string]bool
	stats   *Stats
}

// Run syncs the documents identified by seeds and every document reachable
// from them through links, within MaxDocumentDepth.
//
// A seed that fails to fetch aborts the run; other documents that fail to
// fetch are skipped. Materialization errors always abort.
func (s *Syncer) Run(ctx context.Context, seeds ...string) (*Stats, error) {
	start := time.Now()
	refs, err := parseSeeds(seeds)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.opts.OutputDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	cat := catalog.New()
	r := &run{
		cat:     cat,
		mat:     wiki.NewMaterializer(s.opts.OutputDir, s.opts.Host, cat),
		visited: make(map[string]bool),
		stats:   &Stats{},
	}

	// Phase 1: materialize.
	for _, ref := range refs {
		if err := s.syncDocument(ctx, r, ref, 0, true); err != nil {
			return nil, err
		}
	}
	slog.InfoContext(ctx, "Materialized documents", "docs", r.stats.Documents, "pages", r.stats.Pages, "entries", cat.Len())
	if s.opts.Debug {
		path := filepath.Join(s.opts.OutputDir, DebugCatalogFile)
		if err := cat.Dump(path); err != nil {
			s.progress.OnWarning(fmt.Sprintf("Failed to dump catalog: %v", err))
		} else {
			slog.DebugContext(ctx, "Dumped catalog", "path", path)
		}
	}

	// Phase 2: rewrite links.
	rw, err := RewriteTree(ctx, s.opts.OutputDir, cat.PageMapping(), s.progress, s.opts.Debug)
	if err != nil {
		return nil, err
	}
	r.stats.Files = rw.Files
	r.stats.FilesRewritten = rw.FilesRewritten
	r.stats.LinksRewritten = rw.LinksRewritten
	r.stats.Errors += rw.Errors
	r.stats.Duration = time.Since(start)
	s.progress.OnComplete(*r.stats)
	return r.stats, nil
}

// Preview fetches the seed documents without writing anything.
func (s *Syncer) Preview(ctx context.Context, seeds ...string) ([]*wiki.Document, error) {
	refs, err := parseSeeds(seeds)
	if err != nil {
		return nil, err
	}
	docs := make([]*wiki.Document, 0, len(refs))
	for _, ref := range refs {
		doc, err := s.fetcher.FetchDocument(ctx, ref.WorkspaceID, ref.DocumentID, s.opts.MaxPageDepth)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch document %s: %w", ref, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func parseSeeds(seeds []string) ([]link.DocumentRef, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	refs := make([]link.DocumentRef, 0, len(seeds))
	for _, u := range seeds {
		ref, err := link.ParseDocumentURL(u)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// syncDocument fetches and writes one document, then follows the documents
// it links to. It returns an error only when the run must stop.
func (s *Syncer) syncDocument(ctx context.Context, r *run, ref link.DocumentRef, depth int, seed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.visited[ref.DocumentID] {
		return nil
	}
	if s.opts.MaxDocumentDepth >= 0 && depth > s.opts.MaxDocumentDepth {
		slog.DebugContext(ctx, "Document depth limit reached", "doc", ref.DocumentID, "depth", depth)
		return nil
	}
	r.visited[ref.DocumentID] = true

	doc, err := s.fetcher.FetchDocument(ctx, ref.WorkspaceID, ref.DocumentID, s.opts.MaxPageDepth)
	if err != nil {
		if seed || ctx.Err() != nil {
			return fmt.Errorf("failed to fetch document %s: %w", ref, err)
		}
		slog.WarnContext(ctx, "Skipping linked document", "doc", ref.DocumentID, "err", err)
		s.progress.OnError(fmt.Errorf("document %s: %w", ref, err))
		r.stats.Errors++
		return nil
	}
	if doc.WorkspaceID == "" {
		doc.WorkspaceID = ref.WorkspaceID
	}
	res, err := r.mat.Materialize(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", ref, err)
	}
	r.stats.Documents++
	r.stats.Pages += doc.PageCount()
	s.progress.OnDocument(r.stats.Documents, doc.Name)
	slog.InfoContext(ctx, "Wrote document", "doc", doc.ID, "name", doc.Name, "files", res.Files(), "depth", depth)

	for _, next := range linkedDocuments(doc, ref.WorkspaceID) {
		if err := s.syncDocument(ctx, r, next, depth+1, false); err != nil {
			return err
		}
	}
	return nil
}

// linkedDocuments returns the other documents referenced from doc, in order
// of first appearance.
func linkedDocuments(doc *wiki.Document, workspaceID string) []link.DocumentRef {
	var refs []link.DocumentRef
	seen := map[string]bool{doc.ID: true}
	doc.Walk(func(n *wiki.Node, _ int) {
		for _, l := range link.Parse(n.Content) {
			if !l.Kind.Internal() || l.DocumentID == "" || seen[l.DocumentID] {
				continue
			}
			seen[l.DocumentID] = true
			ws := l.WorkspaceID
			if ws == "" {
				ws = workspaceID
			}
			refs = append(refs, link.DocumentRef{WorkspaceID: ws, DocumentID: l.DocumentID})
		}
	})
	return refs
}
