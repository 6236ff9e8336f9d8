package query

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFile(t *testing.T) {
	writeQuery := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "q.rq")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("accepts SELECT", func(t *testing.T) {
		path := writeQuery(t, "SELECT ?x WHERE { ?x ?p ?o }")
		if _, err := LoadFile(path); err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
	})

	t.Run("accepts leading PREFIX with whitespace", func(t *testing.T) {
		path := writeQuery(t, "\n  PREFIX sc: <https://example.org/>\nSELECT ?x WHERE { ?x ?p ?o }")
		if _, err := LoadFile(path); err != nil {
			t.Fatalf("LoadFile: %v", err)
		}
	})

	t.Run("rejects non-query content", func(t *testing.T) {
		path := writeQuery(t, "INSERT DATA { <a> <b> <c> }")
		_, err := LoadFile(path)
		var formatErr *FormatError
		if !errors.As(err, &formatErr) {
			t.Fatalf("expected FormatError, got %T: %v", err, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.rq")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("full select query", func(t *testing.T) {
		q, err := Parse(`
PREFIX sc: <https://spendcast.ch/schema#>
# line items with their product labels
SELECT ?date ?productName ?lineSubtotal
WHERE {
  ?receipt a sc:Receipt ;
      sc:hasDate ?date ;
      sc:hasLineItem ?line .
  ?line sc:lineSubtotal ?lineSubtotal .
  OPTIONAL { ?line sc:productName ?productName . }
}`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(q.Vars) != 3 || q.Vars[0] != "date" {
			t.Errorf("Vars = %v", q.Vars)
		}
		if len(q.required) != 4 {
			t.Errorf("required patterns = %d, want 4", len(q.required))
		}
		if len(q.optionals) != 1 || len(q.optionals[0]) != 1 {
			t.Errorf("optionals = %v", q.optionals)
		}
	})

	t.Run("distinct", func(t *testing.T) {
		q, err := Parse("SELECT DISTINCT ?x WHERE { ?x ?p ?o }")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !q.Distinct {
			t.Error("Distinct not set")
		}
	})

	t.Run("literal objects", func(t *testing.T) {
		q, err := Parse(`
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
SELECT ?s WHERE {
  ?s <https://example.org/label> "Salate" .
  ?s <https://example.org/name> "Rucola"@de .
  ?s <https://example.org/total> "4.50"^^xsd:decimal .
}`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(q.required) != 3 {
			t.Errorf("required patterns = %d, want 3", len(q.required))
		}
	})

	rejections := []struct {
		name string
		text string
		want string
	}{
		{"construct", "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }", "not supported"},
		{"ask", "ASK { ?s ?p ?o }", "not supported"},
		{"filter", "SELECT ?s WHERE { ?s ?p ?o FILTER(?o > 1) }", "FILTER"},
		{"graph", "SELECT ?s WHERE { GRAPH <http://example.org/g> { ?s ?p ?o } } ", "GRAPH"},
		{"stray parenthesis", "SELECT ?s WHERE { ?s ?p (1 2) }", "unexpected character"},
		{"unknown prefix", "SELECT ?s WHERE { ?s sc:label ?o }", "unknown prefix"},
		{"no variables", "SELECT WHERE { ?s ?p ?o }", "at least one variable"},
		{"missing brace", "SELECT ?s WHERE { ?s ?p ?o", "missing '}'"},
		{"empty where", "SELECT ?s WHERE { }", "empty WHERE"},
	}
	for _, tt := range rejections {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			var execErr *ExecutionError
			if !errors.As(err, &execErr) {
				t.Fatalf("expected ExecutionError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}
