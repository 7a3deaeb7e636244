package vocab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("CaseInsensitiveLookups", func(t *testing.T) {
		v, err := New(Tables{
			SingleTerms:   []string{"Network"},
			CompoundTerms: []string{"Service Offering"},
		})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		if !v.ContainsSingle("NETWORK") || !v.ContainsSingle("network") {
			t.Error("single-term lookup is case-sensitive")
		}
		if !v.ContainsCompound("service offering") || !v.ContainsCompound("Service Offering") {
			t.Error("compound lookup is case-sensitive")
		}
		if v.ContainsCompound("service offering extended") {
			t.Error("compound matched a superset phrase")
		}
	})

	t.Run("RejectsEmptyTerm", func(t *testing.T) {
		if _, err := New(Tables{SingleTerms: []string{"  "}}); err == nil {
			t.Error("expected error for blank single term")
		}
	})

	t.Run("RejectsNonBigramCompound", func(t *testing.T) {
		if _, err := New(Tables{CompoundTerms: []string{"three word phrase"}}); err == nil {
			t.Error("expected error for three-word compound")
		}
	})

	t.Run("RejectsBadPattern", func(t *testing.T) {
		if _, err := New(Tables{IdentifierPatterns: []string{"["}}); err == nil {
			t.Error("expected error for invalid pattern")
		}
	})
}

func TestDefault(t *testing.T) {
	v := Default()

	for _, term := range []string{"security", "network", "wheeling", "eastern"} {
		if !v.ContainsSingle(term) {
			t.Errorf("built-in tables missing %q", term)
		}
	}
	if !v.ContainsCompound("time worked") {
		t.Error("built-in tables missing compound 'time worked'")
	}
	if !v.MatchesIdentifier("TowerFW01") {
		t.Error("serial-style identifier not matched")
	}
	if !v.MatchesIdentifier("INC0444083") {
		t.Error("record number not matched")
	}
	if v.MatchesIdentifier("Johnson Murray") {
		t.Error("plain name pair matched as identifier")
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("ExtendsBuiltins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocabulary.yaml")
		content := []byte("version: \"site-2\"\nsingle_terms:\n  - acmecorp\ncompound_terms:\n  - \"billing portal\"\n")
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}

		v, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}

		if v.Version() != "site-2" {
			t.Errorf("version = %q, want site-2", v.Version())
		}
		if !v.ContainsSingle("acmecorp") {
			t.Error("file term not loaded")
		}
		if !v.ContainsCompound("billing portal") {
			t.Error("file compound not loaded")
		}
		// Built-ins survive the merge.
		if !v.ContainsSingle("security") {
			t.Error("built-in term lost after merge")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocabulary.yaml")
		if err := os.WriteFile(path, []byte("single_terms: {nope"), 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}
