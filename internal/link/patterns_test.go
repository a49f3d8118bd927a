// Tests for the link pattern table.

package link

import (
	"errors"
	"testing"
)

func TestMatchURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Match
		ok   bool
	}{
		{
			name: "page",
			url:  "https://app.example.com/123/v/dc/abc/def",
			want: Match{Kind: KindPage, WorkspaceID: "123", DocumentID: "abc", PageID: "def"},
			ok:   true,
		},
		{
			name: "page with block",
			url:  "https://app.clickup.com/123/v/dc/abc-1/def-2?block=blk-9",
			want: Match{Kind: KindPage, WorkspaceID: "123", DocumentID: "abc-1", PageID: "def-2", BlockReference: "blk-9"},
			ok:   true,
		},
		{
			name: "page with trailing slash",
			url:  "https://app.clickup.com/123/v/dc/abc/def/",
			want: Match{Kind: KindPage, WorkspaceID: "123", DocumentID: "abc", PageID: "def"},
			ok:   true,
		},
		{
			name: "cross document",
			url:  "https://app.clickup.com/123/docs/abc/def",
			want: Match{Kind: KindCrossDocument, WorkspaceID: "123", DocumentID: "abc", PageID: "def"},
			ok:   true,
		},
		{
			name: "document",
			url:  "https://app.clickup.com/123/v/dc/abc",
			want: Match{Kind: KindDocument, WorkspaceID: "123", DocumentID: "abc"},
			ok:   true,
		},
		{
			name: "document with query",
			url:  "https://app.clickup.com/123/v/dc/abc?x=1",
			want: Match{Kind: KindDocument, WorkspaceID: "123", DocumentID: "abc"},
			ok:   true,
		},
		{
			name: "document docs form",
			url:  "http://app.clickup.com/123/docs/abc",
			want: Match{Kind: KindDocument, WorkspaceID: "123", DocumentID: "abc"},
			ok:   true,
		},
		{
			name: "too many segments",
			url:  "https://app.clickup.com/123/v/dc/abc/def/ghi",
		},
		{
			name: "non numeric workspace",
			url:  "https://app.clickup.com/team/v/dc/abc",
		},
		{
			name: "other site",
			url:  "https://example.com/about",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchURL(tt.url)
			if ok != tt.ok {
				t.Fatalf("MatchURL(%q) ok = %v, want %v", tt.url, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("MatchURL(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		url  string
		want Kind
	}{
		{"https://app.clickup.com/1/v/dc/a/b", KindPage},
		{"https://github.com/maruel", KindExternal},
		{"mailto:someone@example.com", KindExternal},
		{"./Sub/page.md", KindExternal},
		{"../other.md", KindExternal},
		{"notes.md", KindExternal},
		{"/absolute/path", KindExternal},
		{"just some words", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.url); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		href, text string
		want       bool
	}{
		{"https://cdn.example.com/a.png", "", true},
		{"https://cdn.example.com/a.JPEG?w=10", "", true},
		{"https://cdn.example.com/a.webp#x", "", true},
		{"https://cdn.example.com/a.png", "diagram", false},
		{"https://cdn.example.com/a.pdf", "", false},
		{"https://app.clickup.com/1/v/dc/a/b", "", false},
	}
	for _, tt := range tests {
		if got := isImage(tt.href, tt.text); got != tt.want {
			t.Errorf("isImage(%q, %q) = %v, want %v", tt.href, tt.text, got, tt.want)
		}
	}
}

func TestParseDocumentURL(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, u := range []string{
			"https://app.clickup.com/9/v/dc/doc-1",
			"https://app.clickup.com/9/v/dc/doc-1/page-2",
			"https://app.clickup.com/9/docs/doc-1/page-2",
			"  https://app.clickup.com/9/docs/doc-1\n",
		} {
			ref, err := ParseDocumentURL(u)
			if err != nil {
				t.Fatalf("ParseDocumentURL(%q) failed: %v", u, err)
			}
			if ref.WorkspaceID != "9" || ref.DocumentID != "doc-1" {
				t.Errorf("ParseDocumentURL(%q) = %+v", u, ref)
			}
		}
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDocumentURL("https://example.com/9")
		if !errors.Is(err, ErrNotDocumentURL) {
			t.Errorf("expected ErrNotDocumentURL, got %v", err)
		}
	})
}

func TestCanonicalURLs(t *testing.T) {
	if got, want := PageURL("app.clickup.com", "1", "d", "p"), "https://app.clickup.com/1/v/dc/d/p"; got != want {
		t.Errorf("PageURL() = %q, want %q", got, want)
	}
	if got, want := DocumentURL("app.clickup.com", "1", "d"), "https://app.clickup.com/1/v/dc/d"; got != want {
		t.Errorf("DocumentURL() = %q, want %q", got, want)
	}
	m, ok := MatchURL(PageURL("app.clickup.com", "1", "d", "p"))
	if !ok || m.Kind != KindPage || m.PageID != "p" {
		t.Errorf("PageURL does not round trip through MatchURL: %+v", m)
	}
}
