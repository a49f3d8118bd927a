// Implements the ordered link pattern table.

package link

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// ErrNotDocumentURL is returned by ParseDocumentURL for URLs that do not
// identify a document.
var ErrNotDocumentURL = errors.New("not a document URL")

// pattern is one entry of the matcher table. Named groups "workspace",
// "document", "page" and "block" populate the corresponding Match fields.
type pattern struct {
	name string
	kind Kind
	re   *regexp.Regexp
}

const (
	idGroup   = `[-a-zA-Z0-9]+`
	hostGroup = `^https?://[^/?#\s]+/(?P<workspace>\d+)`
	// tail accepts an optional trailing slash followed by nothing, a query or
	// a fragment, so that a document pattern never matches a page URL.
	tail = `/?(?:[?#].*)?$`
)

// patterns is ordered most specific first; the first match wins.
var patterns = []pattern{
	{
		name: "page-with-block",
		kind: KindPage,
		re:   regexp.MustCompile(hostGroup + `/v/dc/(?P<document>` + idGroup + `)/(?P<page>` + idGroup + `)/?\?(?:.*&)?block=(?P<block>[^&#]+)`),
	},
	{
		name: "page",
		kind: KindPage,
		re:   regexp.MustCompile(hostGroup + `/v/dc/(?P<document>` + idGroup + `)/(?P<page>` + idGroup + `)` + tail),
	},
	{
		name: "cross-document-page",
		kind: KindCrossDocument,
		re:   regexp.MustCompile(hostGroup + `/docs/(?P<document>` + idGroup + `)/(?P<page>` + idGroup + `)` + tail),
	},
	{
		name: "document",
		kind: KindDocument,
		re:   regexp.MustCompile(hostGroup + `/v/dc/(?P<document>` + idGroup + `)` + tail),
	},
	{
		name: "document-docs",
		kind: KindDocument,
		re:   regexp.MustCompile(hostGroup + `/docs/(?P<document>` + idGroup + `)` + tail),
	},
}

// MatchURL classifies u against the pattern table. It returns false when no
// pattern matches; use Classify to tell external from unknown links.
func MatchURL(u string) (Match, bool) {
	for _, p := range patterns {
		sub := p.re.FindStringSubmatch(u)
		if sub == nil {
			continue
		}
		m := Match{Kind: p.kind}
		for i, g := range p.re.SubexpNames() {
			switch g {
			case "workspace":
				m.WorkspaceID = sub[i]
			case "document":
				m.DocumentID = sub[i]
			case "page":
				m.PageID = sub[i]
			case "block":
				m.BlockReference = sub[i]
			}
		}
		return m, true
	}
	return Match{}, false
}

// Classify returns the kind of u, falling back to KindExternal for generic
// addresses and relative markdown paths, and KindUnknown otherwise.
func Classify(u string) Kind {
	if m, ok := MatchURL(u); ok {
		return m.Kind
	}
	if looksExternal(u) {
		return KindExternal
	}
	return KindUnknown
}

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

func looksExternal(u string) bool {
	switch {
	case u == "":
		return false
	case schemeRe.MatchString(u):
		return true
	case strings.HasPrefix(u, "."), strings.HasPrefix(u, "/"), strings.HasPrefix(u, "#"):
		return true
	case strings.Contains(u, ".md"):
		return true
	}
	return false
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// isImage reports whether a link with the given href and text is an
// embedded image rather than a navigable link.
func isImage(href, text string) bool {
	if text != "" {
		return false
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	return imageExts[strings.ToLower(path.Ext(href))]
}

// DocumentRef identifies a document by workspace and document id.
type DocumentRef struct {
	WorkspaceID string `json:"workspaceId"`
	DocumentID  string `json:"documentId"`
}

func (r DocumentRef) String() string {
	return r.WorkspaceID + "/" + r.DocumentID
}

// ParseDocumentURL extracts the document reference from any document, page
// or cross-document URL.
func ParseDocumentURL(u string) (DocumentRef, error) {
	m, ok := MatchURL(strings.TrimSpace(u))
	if !ok || m.DocumentID == "" {
		return DocumentRef{}, fmt.Errorf("%w: %q", ErrNotDocumentURL, u)
	}
	return DocumentRef{WorkspaceID: m.WorkspaceID, DocumentID: m.DocumentID}, nil
}

// DocumentURL returns the canonical URL of a document.
func DocumentURL(host, workspaceID, documentID string) string {
	return fmt.Sprintf("https://%s/%s/v/dc/%s", host, workspaceID, documentID)
}

// PageURL returns the canonical URL of a page.
func PageURL(host, workspaceID, documentID, pageID string) string {
	return fmt.Sprintf("https://%s/%s/v/dc/%s/%s", host, workspaceID, documentID, pageID)
}
