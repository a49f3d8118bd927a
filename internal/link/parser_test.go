// Tests for the markdown link scanner.

package link

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Run("order and kinds", func(t *testing.T) {
		content := "See [Intro](https://app.clickup.com/1/v/dc/doc/p1) and\n" +
			"[the doc](https://app.clickup.com/1/v/dc/doc), then [GitHub](https://github.com)\n" +
			"and [other](https://app.clickup.com/1/docs/doc2/p9) or [junk](nowhere).\n"
		links := Parse(content)
		want := []struct {
			text string
			kind Kind
		}{
			{"Intro", KindPage},
			{"the doc", KindDocument},
			{"GitHub", KindExternal},
			{"other", KindCrossDocument},
			{"junk", KindUnknown},
		}
		if len(links) != len(want) {
			t.Fatalf("expected %d links, got %d: %+v", len(want), len(links), links)
		}
		for i, w := range want {
			if links[i].Text != w.text || links[i].Kind != w.kind {
				t.Errorf("link %d = {%q %v}, want {%q %v}", i, links[i].Text, links[i].Kind, w.text, w.kind)
			}
		}
		for i := 1; i < len(links); i++ {
			if links[i].Offset() <= links[i-1].Offset() {
				t.Errorf("links not in order of appearance at %d", i)
			}
		}
		if links[3].DocumentID != "doc2" || links[3].PageID != "p9" || links[3].WorkspaceID != "1" {
			t.Errorf("unexpected ids: %+v", links[3])
		}
	})

	t.Run("anchor and block", func(t *testing.T) {
		links := Parse("[a](https://app.clickup.com/1/v/dc/d/p?block=b1#sec-2)")
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d", len(links))
		}
		l := links[0]
		if l.URL != "https://app.clickup.com/1/v/dc/d/p" {
			t.Errorf("URL = %q", l.URL)
		}
		if l.OriginalURL != "https://app.clickup.com/1/v/dc/d/p?block=b1#sec-2" {
			t.Errorf("OriginalURL = %q", l.OriginalURL)
		}
		if l.BlockReference != "b1" || l.Anchor != "sec-2" {
			t.Errorf("block = %q, anchor = %q", l.BlockReference, l.Anchor)
		}
		if l.Kind != KindPage || l.PageID != "p" {
			t.Errorf("unexpected match: %+v", l)
		}
	})

	t.Run("image excluded", func(t *testing.T) {
		links := Parse("![](https://cdn.example.com/shot.png) [](https://cdn.example.com/x.gif) [alt](https://cdn.example.com/y.gif)")
		if len(links) != 1 || links[0].Text != "alt" {
			t.Fatalf("expected only the captioned image, got %+v", links)
		}
	})

	t.Run("emphasis in text", func(t *testing.T) {
		links := Parse("[**Bold** _it_](https://app.clickup.com/1/v/dc/d/p)")
		if len(links) != 1 || links[0].Text != "**Bold** _it_" {
			t.Fatalf("unexpected links: %+v", links)
		}
	})

	t.Run("title is not part of the url", func(t *testing.T) {
		links := Parse(`[a](https://app.clickup.com/1/v/dc/d/p "Title")`)
		if len(links) != 1 || links[0].URL != "https://app.clickup.com/1/v/dc/d/p" || links[0].Kind != KindPage {
			t.Fatalf("unexpected links: %+v", links)
		}
	})

	t.Run("parentheses in url", func(t *testing.T) {
		links := Parse("[w](https://en.wikipedia.org/wiki/Go_(language)) tail")
		if len(links) != 1 || links[0].URL != "https://en.wikipedia.org/wiki/Go_(language)" {
			t.Fatalf("unexpected links: %+v", links)
		}
	})

	t.Run("code is ignored", func(t *testing.T) {
		content := "`[a](https://app.clickup.com/1/v/dc/d/p)`\n" +
			"```\n[b](https://app.clickup.com/1/v/dc/d/q)\n```\n" +
			"[c](https://app.clickup.com/1/v/dc/d/r)\n"
		links := Parse(content)
		if len(links) != 1 || links[0].Text != "c" {
			t.Fatalf("unexpected links: %+v", links)
		}
	})

	t.Run("unmatched backticks in separate paragraphs", func(t *testing.T) {
		content := "Press the ` key to open the console.\n\n" +
			"See [Setup](https://app.clickup.com/1/v/dc/d/p).\n\n" +
			"The ` character again.\n"
		links := Parse(content)
		if len(links) != 1 || links[0].Text != "Setup" {
			t.Fatalf("unexpected links: %+v", links)
		}
	})

	t.Run("escaped bracket", func(t *testing.T) {
		if links := Parse(`\[a](https://app.clickup.com/1/v/dc/d/p)`); len(links) != 0 {
			t.Fatalf("expected no links, got %+v", links)
		}
	})

	t.Run("escaped backslash before link", func(t *testing.T) {
		links := Parse(`\\[Doc](https://app.clickup.com/1/v/dc/d/p)`)
		if len(links) != 1 || links[0].Text != "Doc" {
			t.Fatalf("unexpected links: %+v", links)
		}
	})

	t.Run("table cell", func(t *testing.T) {
		content := "| Name | Link |\n|---|---|\n| x | [Spec](https://app.clickup.com/1/v/dc/d/p) |\n"
		links := Parse(content)
		if len(links) != 1 || links[0].PageID != "p" {
			t.Fatalf("unexpected links: %+v", links)
		}
	})

	t.Run("fragment only", func(t *testing.T) {
		links := Parse("[top](#top)")
		if len(links) != 1 || links[0].Kind != KindExternal || links[0].Anchor != "top" {
			t.Fatalf("unexpected links: %+v", links)
		}
	})
}

func TestParseNested(t *testing.T) {
	t.Run("encoded", func(t *testing.T) {
		content := "x [Outer](%5BInner%20Text%5D(https%3A%2F%2Fapp.clickup.com%2F1%2Fv%2Fdc%2Fd%2Fp)) y"
		links := Parse(content)
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d: %+v", len(links), links)
		}
		l := links[0]
		if l.Text != "Outer" || l.Kind != KindPage || l.PageID != "p" || l.Depth != 1 {
			t.Errorf("unexpected link: %+v", l)
		}
		if l.whole.start != 2 || l.whole.end != len(content)-2 {
			t.Errorf("nested link must cover the outer construct, got %+v", l.whole)
		}
	})

	t.Run("raw with empty outer text", func(t *testing.T) {
		links := Parse("[]([Field Glossary](https://app.clickup.com/1/v/dc/d/p))")
		if len(links) != 1 || links[0].Text != "Field Glossary" || links[0].Kind != KindPage {
			t.Fatalf("unexpected links: %+v", links)
		}
	})

	t.Run("depth is capped", func(t *testing.T) {
		content := "[a]([b]([c]([d]([e](https://app.clickup.com/1/v/dc/d/p)))))"
		links := Parse(content)
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %+v", links)
		}
		if links[0].Depth != maxNestingDepth {
			t.Errorf("Depth = %d, want %d", links[0].Depth, maxNestingDepth)
		}
	})
}

func TestParseIdempotent(t *testing.T) {
	content := "[a](https://app.clickup.com/1/v/dc/d/p) [b](./x.md) [c](https://app.clickup.com/1/docs/e)"
	first := Parse(content)
	second := Parse(content)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestSplitHref(t *testing.T) {
	tests := []struct {
		raw, clean, block, anchor string
	}{
		{"https://h/1/v/dc/d/p", "https://h/1/v/dc/d/p", "", ""},
		{"https://h/1/v/dc/d/p#frag", "https://h/1/v/dc/d/p", "", "frag"},
		{"https://h/1/v/dc/d/p?block=b", "https://h/1/v/dc/d/p", "b", ""},
		{"https://h/1/v/dc/d/p?x=1&block=b&y=2", "https://h/1/v/dc/d/p?x=1&y=2", "b", ""},
		{"https://h/1/v/dc/d/p?block=b#a", "https://h/1/v/dc/d/p", "b", "a"},
	}
	for _, tt := range tests {
		clean, block, anchor := splitHref(tt.raw)
		if clean != tt.clean || block != tt.block || anchor != tt.anchor {
			t.Errorf("splitHref(%q) = %q, %q, %q", tt.raw, clean, block, anchor)
		}
	}
}
