package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spendcast/internal/config"
	"spendcast/internal/core"
	"spendcast/internal/report"
)

const sourceTTL = `
@prefix sc: <https://spendcast.ch/schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

<https://spendcast.ch/receipt/1> a sc:Receipt ;
    sc:hasDate "2024-07-02"^^xsd:date ;
    sc:receiptTotal "12.40"^^xsd:decimal .
<https://spendcast.ch/receipt/2> a sc:Receipt ;
    sc:hasDate "2024-08-01"^^xsd:date ;
    sc:receiptTotal "7.60"^^xsd:decimal .
`

const sourceQuery = `PREFIX sc: <https://spendcast.ch/schema#>
SELECT ?date ?receiptTotal
WHERE {
  ?receipt a sc:Receipt ;
      sc:hasDate ?date ;
      sc:receiptTotal ?receiptTotal .
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	graphPath := filepath.Join(dir, "graph.ttl")
	if err := os.WriteFile(graphPath, []byte(sourceTTL), 0o644); err != nil {
		t.Fatal(err)
	}
	queriesDir := filepath.Join(dir, "queries")
	if err := os.MkdirAll(queriesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(queriesDir, "transport.rq"), []byte(sourceQuery), 0o644); err != nil {
		t.Fatal(err)
	}

	return &config.Config{
		GraphPath:       graphPath,
		QueriesDir:      queriesDir,
		ReportsDir:      dir,
		OutputDir:       filepath.Join(dir, "output"),
		EndpointTimeout: 5 * time.Second,
	}
}

func transportDef(source string) *report.Definition {
	return &report.Definition{
		Name:   "transport",
		Query:  "transport.rq",
		Output: "transport_spend.json",
		Source: source,
		Variables: report.Variables{
			Date:   "date",
			Amount: "receiptTotal",
		},
		Classifier: report.ClassifierConfig{Default: "transport"},
	}
}

func drain(t *testing.T, s RowStream) []core.ResultRow {
	t.Helper()
	defer s.Close()
	var rows []core.ResultRow
	for s.Next() {
		rows = append(rows, s.Row())
	}
	return rows
}

func TestFileSource(t *testing.T) {
	cfg := testConfig(t)
	src, err := NewFactory(cfg, nil).Create(transportDef(""))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := src.(*FileSource); !ok {
		t.Fatalf("default source is %T, want *FileSource", src)
	}

	stream, err := src.Rows(context.Background())
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	rows := drain(t, stream)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	seen := map[string]string{}
	for _, r := range rows {
		seen[r["date"]] = r["receiptTotal"]
	}
	if seen["2024-07-02"] != "12.40" || seen["2024-08-01"] != "7.60" {
		t.Errorf("rows = %v", seen)
	}
}

func TestFileSource_FatalErrors(t *testing.T) {
	t.Run("missing graph", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GraphPath = filepath.Join(t.TempDir(), "absent.ttl")
		src, err := NewFactory(cfg, nil).Create(transportDef(report.SourceFile))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := src.Rows(context.Background()); err == nil {
			t.Fatal("expected load error")
		}
	})

	t.Run("missing query", func(t *testing.T) {
		cfg := testConfig(t)
		def := transportDef(report.SourceFile)
		def.Query = "absent.rq"
		src, err := NewFactory(cfg, nil).Create(def)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := src.Rows(context.Background()); err == nil {
			t.Fatal("expected query file error")
		}
	})
}

func TestEndpointSource(t *testing.T) {
	const results = `{
  "head": {"vars": ["date", "receiptTotal"]},
  "results": {"bindings": [
    {"date": {"type": "literal", "value": "2024-07-15"},
     "receiptTotal": {"type": "literal", "value": "40.80"}}
  ]}
}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = w.Write([]byte(results))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.EndpointURL = srv.URL
	src, err := NewFactory(cfg, nil).Create(transportDef(report.SourceEndpoint))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := src.(*EndpointSource); !ok {
		t.Fatalf("source is %T, want *EndpointSource", src)
	}

	stream, err := src.Rows(context.Background())
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	rows := drain(t, stream)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0]["date"] != "2024-07-15" || rows[0]["receiptTotal"] != "40.80" {
		t.Errorf("row = %v", rows[0])
	}
}

func TestFactory_UnknownSource(t *testing.T) {
	cfg := testConfig(t)
	if _, err := NewFactory(cfg, nil).Create(transportDef("graphdb")); err == nil {
		t.Fatal("expected error for unknown source")
	}
}
