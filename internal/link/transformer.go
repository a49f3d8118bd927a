// Implements link rewriting against a page mapping.

package link

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/maruel/clickwiki/internal/catalog"
)

// Replacement records one rewritten link.
type Replacement struct {
	Text        string `json:"text"`
	NewText     string `json:"newText"`
	OriginalURL string `json:"originalUrl"`
	LocalLink   string `json:"localLink"`
	PageID      string `json:"pageId,omitempty"`
	DocumentID  string `json:"documentId,omitempty"`
}

// edit replaces content[s.start:s.end] with repl.
type edit struct {
	s    span
	repl string
}

var rawURLRe = regexp.MustCompile(`^https?://\S+$`)

// Transform rewrites every resolvable link in content to a path relative to
// the directory of currentFile. Only the href, and the text when it is empty
// or a bare URL, are touched; everything else is returned byte for byte.
//
// Links that do not resolve are left as is. currentFile and the mapping
// paths must both be absolute or both relative.
func Transform(content string, mapping catalog.PageMapping, currentFile string) (string, []Replacement) {
	var edits []edit
	var repls []Replacement
	var claimed []span
	dir := filepath.Dir(currentFile)
	for _, l := range Parse(content) {
		target, ok := Resolve(&l, mapping)
		if !ok {
			continue
		}
		if overlapsAny(l.whole, claimed) {
			continue
		}
		local, ok := relativeLink(dir, target.AbsolutePath)
		if !ok {
			continue
		}
		if l.Anchor != "" {
			local += "#" + l.Anchor
		} else if l.BlockReference != "" {
			local += "?block=" + l.BlockReference
		}
		text := displayText(l.Text, target.Name)
		claimed = append(claimed, l.whole)
		if text != content[l.text.start:l.text.end] {
			edits = append(edits, edit{l.text, text})
		}
		edits = append(edits, edit{l.href, local})
		repls = append(repls, Replacement{
			Text:        l.Text,
			NewText:     text,
			OriginalURL: l.OriginalURL,
			LocalLink:   local,
			PageID:      l.PageID,
			DocumentID:  l.DocumentID,
		})
	}
	if len(edits) == 0 {
		return content, nil
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].s.start < edits[j].s.start })
	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, e := range edits {
		b.WriteString(content[last:e.s.start])
		b.WriteString(e.repl)
		last = e.s.end
	}
	b.WriteString(content[last:])
	return b.String(), repls
}

// Resolve finds the target of an internal link: by original or cleaned URL,
// then by page id, then by document id.
func Resolve(l *ParsedLink, mapping catalog.PageMapping) (catalog.Target, bool) {
	switch l.Kind {
	case KindPage, KindCrossDocument, KindDocument:
	default:
		return catalog.Target{}, false
	}
	for _, key := range []string{l.OriginalURL, l.URL, l.PageID, l.DocumentID} {
		if key == "" {
			continue
		}
		if t, ok := mapping[key]; ok {
			return t, true
		}
	}
	return catalog.Target{}, false
}

// relativeLink returns target relative to dir with forward slashes and a
// leading "./" or "../".
func relativeLink(dir, target string) (string, bool) {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "./") && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, true
}

func displayText(text, name string) string {
	if text != "" && !rawURLRe.MatchString(text) {
		return text
	}
	if name != "" {
		return name
	}
	return "Untitled"
}

func overlapsAny(s span, spans []span) bool {
	for _, o := range spans {
		if s.overlaps(o) {
			return true
		}
	}
	return false
}
