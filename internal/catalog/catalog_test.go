// Tests for the page catalog.

package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestCatalog(t *testing.T) {
	t.Run("lookups", func(t *testing.T) {
		c := New()
		c.Add(Entry{ID: "p1", DocumentID: "d", Name: "One", AbsolutePath: "/o/d/One.md", OriginalURL: "https://h/1/v/dc/d/p1", ParentID: "root"})
		c.Add(Entry{ID: "p2", DocumentID: "d", Name: "Two", AbsolutePath: "/o/d/Two.md"})
		c.Add(Entry{ID: "q1", DocumentID: "e", Name: "Q", AbsolutePath: "/o/e/Q.md"})

		if c.Len() != 3 {
			t.Fatalf("Len() = %d, want 3", c.Len())
		}
		if e, ok := c.ByID("p2"); !ok || e.Name != "Two" {
			t.Errorf("ByID(p2) = %+v, %v", e, ok)
		}
		if e, ok := c.ByURL("https://h/1/v/dc/d/p1"); !ok || e.ID != "p1" {
			t.Errorf("ByURL() = %+v, %v", e, ok)
		}
		if _, ok := c.ByURL("https://h/1/v/dc/d/p2"); ok {
			t.Error("ByURL() found an entry without URL")
		}
		if got := c.ByDocumentID("d"); len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p2" {
			t.Errorf("ByDocumentID(d) = %+v", got)
		}
		if got := c.ByDocumentID("missing"); len(got) != 0 {
			t.Errorf("ByDocumentID(missing) = %+v", got)
		}
	})

	t.Run("document entry", func(t *testing.T) {
		c := New()
		c.Add(Entry{ID: "child", DocumentID: "d", ParentID: "top", AbsolutePath: "/o/d/top/child.md"})
		c.Add(Entry{ID: "top", DocumentID: "d", AbsolutePath: "/o/d/top/top.md"})
		e, ok := c.DocumentEntry("d")
		if !ok || e.ID != "top" {
			t.Errorf("DocumentEntry() = %+v, want the parentless entry", e)
		}

		c2 := New()
		c2.Add(Entry{ID: "a", DocumentID: "d", ParentID: "x"})
		c2.Add(Entry{ID: "b", DocumentID: "d", ParentID: "x"})
		if e, ok := c2.DocumentEntry("d"); !ok || e.ID != "a" {
			t.Errorf("DocumentEntry() = %+v, want the first entry", e)
		}
		if _, ok := c2.DocumentEntry("nope"); ok {
			t.Error("DocumentEntry() found a missing document")
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		c := New()
		if c.Add(Entry{ID: "p", DocumentID: "d", Name: "old", OriginalURL: "u1"}) {
			t.Error("first Add() reported a replacement")
		}
		if !c.Add(Entry{ID: "p", DocumentID: "d", Name: "new", OriginalURL: "u2"}) {
			t.Error("second Add() did not report a replacement")
		}
		if c.Len() != 1 {
			t.Errorf("Len() = %d, want 1", c.Len())
		}
		if e, _ := c.ByID("p"); e.Name != "new" {
			t.Errorf("ByID() = %+v, want the later entry", e)
		}
		if _, ok := c.ByURL("u1"); ok {
			t.Error("stale URL still indexed")
		}
		if got := c.ByDocumentID("d"); len(got) != 1 {
			t.Errorf("ByDocumentID() = %+v", got)
		}
	})

	t.Run("page mapping", func(t *testing.T) {
		c := New()
		c.Add(Entry{ID: "p1", DocumentID: "d", Name: "One", AbsolutePath: "/o/d/One.md", OriginalURL: "https://h/1/v/dc/d/p1"})
		c.Add(Entry{ID: "p2", DocumentID: "d", Name: "Two", AbsolutePath: "/o/d/Two.md", ParentID: "p1"})
		m := c.PageMapping()
		if len(m) != 4 {
			t.Errorf("expected 4 keys, got %d: %+v", len(m), m)
		}
		for _, k := range []string{"p1", "https://h/1/v/dc/d/p1", "d"} {
			if m[k].AbsolutePath != "/o/d/One.md" || m[k].Name != "One" {
				t.Errorf("m[%q] = %+v", k, m[k])
			}
		}
		if m["p2"].Name != "Two" {
			t.Errorf("m[p2] = %+v", m["p2"])
		}
	})

	t.Run("real root keeps its own entry", func(t *testing.T) {
		c := New()
		c.Add(Entry{ID: "d", DocumentID: "d", Name: "Root", AbsolutePath: "/o/Root/Root.md"})
		c.Add(Entry{ID: "p", DocumentID: "d", Name: "P", AbsolutePath: "/o/Root/P.md", ParentID: "d"})
		if got := c.PageMapping()["d"]; got.Name != "Root" {
			t.Errorf("m[d] = %+v", got)
		}
	})
}

func TestDump(t *testing.T) {
	c := New()
	c.Add(Entry{ID: "p1", DocumentID: "d", Name: "One", AbsolutePath: "/o/d/One.md"})
	path := filepath.Join(t.TempDir(), "catalog-debug.json")
	if err := c.Dump(path); err != nil {
		t.Fatalf("Dump() failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	var got struct {
		Entries     []Entry     `json:"entries"`
		PageMapping PageMapping `json:"pageMapping"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0].ID != "p1" {
		t.Errorf("entries = %+v", got.Entries)
	}
	if got.PageMapping["d"].Name != "One" {
		t.Errorf("pageMapping = %+v", got.PageMapping)
	}
}
