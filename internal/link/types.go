// Defines parsed link types.

package link

// Kind is the category of a parsed link.
type Kind int

// Link kinds.
const (
	KindUnknown Kind = iota
	KindPage
	KindDocument
	KindCrossDocument
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindDocument:
		return "document"
	case KindCrossDocument:
		return "cross_document"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Internal reports whether the link points into the document hub and is a
// candidate for rewriting.
func (k Kind) Internal() bool {
	return k == KindPage || k == KindDocument || k == KindCrossDocument
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// span is a half-open byte range [start, end) into the scanned content.
type span struct {
	start, end int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// ParsedLink is one inline markdown link found in content.
type ParsedLink struct {
	// Text is the display text. For a link spliced out of a nested construct
	// it is the outer text when non-empty, else the inner one.
	Text string `json:"text"`
	// URL is the href with the anchor and block reference removed.
	URL string `json:"url"`
	// OriginalURL is the href exactly as written in the content.
	OriginalURL    string `json:"originalUrl"`
	Kind           Kind   `json:"kind"`
	WorkspaceID    string `json:"workspaceId,omitempty"`
	DocumentID     string `json:"documentId,omitempty"`
	PageID         string `json:"pageId,omitempty"`
	BlockReference string `json:"blockReference,omitempty"`
	Anchor         string `json:"anchor,omitempty"`
	// Depth is 0 for a top-level link and increases by one per level of
	// nesting it was decoded from.
	Depth int `json:"depth,omitempty"`

	// whole covers the entire [text](url) construct.
	whole span
	// text covers the bytes between the brackets.
	text span
	// href covers the URL bytes between the parentheses, without any title.
	href span
}

// Offset returns the byte offset of the construct in the scanned content.
func (l *ParsedLink) Offset() int {
	return l.whole.start
}

// Match is the result of matching a URL against the pattern table.
type Match struct {
	Kind           Kind
	WorkspaceID    string
	DocumentID     string
	PageID         string
	BlockReference string
}
