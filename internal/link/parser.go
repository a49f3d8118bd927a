// Implements the markdown link scanner.

package link

import (
	"net/url"
	"regexp"
	"strings"
)

// maxNestingDepth bounds how many times a percent-encoded link inside
// another link's href is decoded and parsed again.
const maxNestingDepth = 3

// nestedRe matches an href that is itself a complete markdown link.
var nestedRe = regexp.MustCompile(`(?s)^\s*\[.*\]\(.*\)\s*$`)

// Parse returns every inline markdown link in content, in order of first
// occurrence. Links inside fenced code blocks and inline code spans are
// ignored, as are embedded images with empty text.
//
// Parse has no side effects; calling it twice on the same content returns
// the same result.
func Parse(content string) []ParsedLink {
	return parse(content, 0)
}

func parse(content string, depth int) []ParsedLink {
	var links []ParsedLink
	code := codeRanges(content)
	ci := 0
	for i := 0; i < len(content); {
		j := strings.IndexByte(content[i:], '[')
		if j < 0 {
			break
		}
		start := i + j
		for ci < len(code) && code[ci].end <= start {
			ci++
		}
		if ci < len(code) && code[ci].start <= start {
			i = code[ci].end
			continue
		}
		if escaped(content, start) {
			i = start + 1
			continue
		}
		l, ok := scanLink(content, start)
		if !ok {
			i = start + 1
			continue
		}
		links = append(links, expand(content, l, depth)...)
		i = l.whole.end
	}
	return links
}

// escaped reports whether content[i] is preceded by an odd number of
// backslashes.
func escaped(content string, i int) bool {
	n := 0
	for k := i - 1; k >= 0 && content[k] == '\\'; k-- {
		n++
	}
	return n%2 == 1
}

// scanLink reads a [text](href) construct starting at the '[' at start.
func scanLink(content string, start int) (ParsedLink, bool) {
	var l ParsedLink
	closeText := matchBracket(content, start, '[', ']')
	if closeText < 0 || closeText+1 >= len(content) || content[closeText+1] != '(' {
		return l, false
	}
	open := closeText + 1
	closeURL := matchBracket(content, open, '(', ')')
	if closeURL < 0 {
		return l, false
	}
	l.whole = span{start, closeURL + 1}
	l.text = span{start + 1, closeText}

	// Skip leading blanks, then cut an optional title unless the href is a
	// nested link whose text may legitimately contain spaces.
	hs := open + 1
	for hs < closeURL && (content[hs] == ' ' || content[hs] == '\t') {
		hs++
	}
	he := closeURL
	if hs < he && content[hs] != '[' {
		if k := strings.IndexAny(content[hs:he], " \t\n"); k >= 0 {
			he = hs + k
		}
	} else {
		for he > hs && (content[he-1] == ' ' || content[he-1] == '\t') {
			he--
		}
	}
	l.href = span{hs, he}
	return l, true
}

// matchBracket returns the index of the bracket closing the one at i, or -1.
// Backslash escapes are honored and a construct never spans a blank line.
func matchBracket(content string, i int, open, closing byte) int {
	depth := 0
	for k := i; k < len(content); k++ {
		switch c := content[k]; c {
		case '\\':
			k++
		case '\n':
			if k+1 < len(content) && content[k+1] == '\n' {
				return -1
			}
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return k
			}
		}
	}
	return -1
}

// expand turns a scanned construct into zero or more links: none for an
// embedded image, the decoded inner links for a nested construct, or the
// construct itself.
func expand(content string, l ParsedLink, depth int) []ParsedLink {
	raw := content[l.href.start:l.href.end]
	text := content[l.text.start:l.text.end]
	if depth < maxNestingDepth {
		decoded := raw
		if d, err := url.PathUnescape(raw); err == nil {
			decoded = d
		}
		if nestedRe.MatchString(decoded) {
			if inner := parse(decoded, depth+1); len(inner) > 0 {
				for i := range inner {
					if text != "" {
						inner[i].Text = text
					}
					inner[i].whole = l.whole
					inner[i].text = l.text
					inner[i].href = l.href
				}
				return inner
			}
		}
	}
	if isImage(raw, text) {
		return nil
	}
	l.Text = text
	l.OriginalURL = raw
	l.Depth = depth
	l.URL, l.BlockReference, l.Anchor = splitHref(raw)
	if m, ok := MatchURL(l.URL); ok {
		l.Kind = m.Kind
		l.WorkspaceID = m.WorkspaceID
		l.DocumentID = m.DocumentID
		l.PageID = m.PageID
	} else if looksExternal(l.URL) || (l.URL == "" && l.Anchor != "") {
		l.Kind = KindExternal
	} else {
		l.Kind = KindUnknown
	}
	return []ParsedLink{l}
}

// splitHref removes the fragment and the block query parameter from raw.
// Other query parameters are kept in their original order and encoding.
func splitHref(raw string) (clean, block, anchor string) {
	clean = raw
	if i := strings.IndexByte(clean, '#'); i >= 0 {
		anchor = clean[i+1:]
		clean = clean[:i]
	}
	i := strings.IndexByte(clean, '?')
	if i < 0 {
		return clean, "", anchor
	}
	base, query := clean[:i], clean[i+1:]
	var kept []string
	for kv := range strings.SplitSeq(query, "&") {
		if v, ok := strings.CutPrefix(kv, "block="); ok {
			if block == "" {
				block = v
			}
			continue
		}
		if kv != "" {
			kept = append(kept, kv)
		}
	}
	clean = base
	if len(kept) > 0 {
		clean += "?" + strings.Join(kept, "&")
	}
	return clean, block, anchor
}

// codeRanges returns the sorted byte ranges of fenced code blocks and inline
// code spans in content.
func codeRanges(content string) []span {
	var out []span
	fenceStart := -1
	fence := ""
	segStart := 0
	for off := 0; off < len(content); {
		end := strings.IndexByte(content[off:], '\n')
		next := len(content)
		if end >= 0 {
			next = off + end + 1
		}
		line := strings.TrimLeft(content[off:next], " \t")
		if fenceStart < 0 {
			if f := fenceMarker(line); f != "" {
				out = append(out, inlineCode(content, segStart, off)...)
				fenceStart, fence = off, f
			}
		} else if strings.HasPrefix(line, fence) {
			out = append(out, span{fenceStart, next})
			fenceStart = -1
			segStart = next
		}
		off = next
	}
	if fenceStart >= 0 {
		out = append(out, span{fenceStart, len(content)})
	} else {
		out = append(out, inlineCode(content, segStart, len(content))...)
	}
	return out
}

func fenceMarker(line string) string {
	for _, f := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, f) {
			return f
		}
	}
	return ""
}

// inlineCode returns the backtick code spans within content[from:to]. A
// span never crosses a blank line.
func inlineCode(content string, from, to int) []span {
	var out []span
	para := from
	for off := from; off < to; {
		end := to
		if k := strings.IndexByte(content[off:to], '\n'); k >= 0 {
			end = off + k + 1
		}
		if strings.TrimSpace(content[off:end]) == "" {
			out = append(out, codeSpans(content, para, off)...)
			para = end
		}
		off = end
	}
	return append(out, codeSpans(content, para, to)...)
}

// codeSpans returns the code spans of one paragraph. An opening run of n
// backticks is closed by the next run of exactly n.
func codeSpans(content string, from, to int) []span {
	var out []span
	for i := from; i < to; {
		if content[i] != '`' {
			i++
			continue
		}
		n := runLength(content, i, to)
		closed := false
		for k := i + n; k < to; {
			if content[k] != '`' {
				k++
				continue
			}
			m := runLength(content, k, to)
			if m == n {
				out = append(out, span{i, k + m})
				i = k + m
				closed = true
				break
			}
			k += m
		}
		if !closed {
			i += n
		}
	}
	return out
}

func runLength(content string, i, to int) int {
	n := 0
	for i+n < to && content[i+n] == '`' {
		n++
	}
	return n
}
