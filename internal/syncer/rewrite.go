// Rewrites links in every markdown file of a mirror.

package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maruel/clickwiki/internal/catalog"
	"github.com/maruel/clickwiki/internal/link"
	"github.com/maruel/clickwiki/internal/wiki"
)

// RewriteStats summarizes one RewriteTree call.
type RewriteStats struct {
	Files          int
	FilesRewritten int
	LinksRewritten int
	Errors         int
}

// RewriteTree rewrites the links of every markdown file under root against
// mapping. A file is written back only when its content changed. Per-file
// failures are reported and counted; only a failure to list the tree is
// returned.
func RewriteTree(ctx context.Context, root string, mapping catalog.PageMapping, progress ProgressReporter, debug bool) (*RewriteStats, error) {
	if progress == nil {
		progress = &NullProgress{}
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	files, err := wiki.FindMarkdownFiles(root)
	if err != nil {
		return nil, err
	}
	stats := &RewriteStats{Files: len(files)}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		repls, err := rewriteFile(path, mapping)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to rewrite file", "path", path, "err", err)
			progress.OnError(err)
			stats.Errors++
			continue
		}
		if len(repls) == 0 {
			continue
		}
		stats.FilesRewritten++
		stats.LinksRewritten += len(repls)
		progress.OnRewrite(path, len(repls))
		if debug {
			for _, r := range repls {
				slog.DebugContext(ctx, "Rewrote link", "path", path, "text", r.NewText, "from", r.OriginalURL, "to", r.LocalLink, "page", r.PageID, "doc", r.DocumentID)
			}
		}
	}
	return stats, nil
}

// rewriteFile returns the replacements made; the file is left untouched when
// there are none.
func rewriteFile(path string, mapping catalog.PageMapping) ([]link.Replacement, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := string(data)
	out, repls := link.Transform(content, mapping, path)
	if out == content {
		return nil, nil
	}
	if err := os.WriteFile(path, []byte(out), fi.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return repls, nil
}
