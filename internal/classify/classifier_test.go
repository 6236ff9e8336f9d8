package classify

import (
	"os"
	"path/filepath"
	"testing"

	"spendcast/internal/core"
)

// foodRules mirrors the healthy/unhealthy configuration: category lists
// checked before product keywords, healthy before unhealthy.
func foodRules() []Rule {
	return []Rule{
		{Field: FieldCategory, Keywords: []string{"salate", "gemüse", "tomaten", "fisch"}, Bucket: "healthy"},
		{Field: FieldProduct, Keywords: []string{"bio", "vollkorn", "natur"}, Bucket: "healthy"},
		{Field: FieldCategory, Keywords: []string{"schokolade", "chips", "softdrinks"}, Bucket: "unhealthy"},
		{Field: FieldProduct, Keywords: []string{"zucker", "schoko", "caramel"}, Bucket: "unhealthy"},
	}
}

func TestClassifier_RuleOrder(t *testing.T) {
	c, err := New(foodRules(), "healthy")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		name     string
		category string
		product  string
		want     core.Bucket
	}{
		{"category healthy match", "Salate", "Rucola", "healthy"},
		{"category unhealthy match", "Schokolade", "Milka", "unhealthy"},
		{"case insensitive", "SCHOKOLADE", "", "unhealthy"},
		{"product keyword healthy", "Unbekannt", "Bio-Joghurt", "healthy"},
		{"product keyword unhealthy", "Unbekannt", "Schoko-Riegel", "unhealthy"},
		// category is checked before product: a healthy category wins even
		// when the product name carries an unhealthy keyword
		{"category beats product", "Gemüse", "Zuckermais", "healthy"},
		// healthy rules come before unhealthy: a product matching both
		// lists takes the earlier bucket
		{"earlier rule wins", "Unbekannt", "Bio-Schokolade", "healthy"},
		{"default when nothing matches", "Diverses", "Irgendwas", "healthy"},
		{"both inputs absent", "", "", "healthy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.category, tc.product, "")
			if got != tc.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tc.category, tc.product, got, tc.want)
			}
			// pure function: same input, same output
			if again := c.Classify(tc.category, tc.product, ""); again != got {
				t.Errorf("Classify not deterministic: %q then %q", got, again)
			}
		})
	}
}

func TestClassifier_UnclassifiedBucket(t *testing.T) {
	c, err := New(foodRules(), "healthy", WithUnclassifiedBucket("unclassified"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Classify("Diverses", "Irgendwas", ""); got != "unclassified" {
		t.Errorf("unmatched row = %q, want unclassified", got)
	}
	if got := c.Classify("Salate", "", ""); got != "healthy" {
		t.Errorf("matched row = %q, want healthy", got)
	}
}

func TestClassifier_AccentFolding(t *testing.T) {
	rules := []Rule{
		{Field: FieldText, Keywords: []string{"spécialité suisse", "emmi"}, Bucket: "Swiss-made"},
	}
	c, err := New(rules, "not Swiss-made", WithAccentFolding())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		product, description string
		want                 core.Bucket
	}{
		{"Käse", "Specialite Suisse extra", "Swiss-made"},   // input without accents
		{"Bergkäse", "SPÉCIALITÉ SUISSE", "Swiss-made"},     // accented, upper-cased
		{"EMMI Caffè Latte", "", "Swiss-made"},              // brand in product name
		{"Gouda", "Import", "not Swiss-made"},
	}
	for _, tc := range cases {
		if got := c.Classify("", tc.product, tc.description); got != tc.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", tc.product, tc.description, got, tc.want)
		}
	}
}

func TestClassifier_TextFieldCombinesProductAndDescription(t *testing.T) {
	rules := []Rule{
		{Field: FieldText, Keywords: []string{"ip-suisse"}, Bucket: "Swiss-made"},
	}
	c, err := New(rules, "not Swiss-made")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Classify("", "Eier", "IP-SUISSE Freiland"); got != "Swiss-made" {
		t.Errorf("description hit = %q, want Swiss-made", got)
	}
}

func TestClassifier_Buckets(t *testing.T) {
	c, err := New(foodRules(), "healthy")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := c.Buckets()
	if len(got) != 2 || got[0] != "healthy" || got[1] != "unhealthy" {
		t.Errorf("Buckets() = %v", got)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, ""); err == nil {
		t.Error("empty default bucket should fail")
	}
	if _, err := New([]Rule{{Field: "label", Keywords: []string{"x"}, Bucket: "b"}}, "d"); err == nil {
		t.Error("unknown field should fail")
	}
	if _, err := New([]Rule{{Field: FieldCategory, Bucket: "b"}}, "d"); err == nil {
		t.Error("empty keyword list should fail")
	}
	if _, err := New([]Rule{{Field: FieldCategory, Keywords: []string{"x"}}}, "d"); err == nil {
		t.Error("empty rule bucket should fail")
	}
}

func TestLoadKeywordsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brands.csv")
	content := "brand\nEmmi\nRicola\n\nZweifel\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadKeywordsCSV(path)
	if err != nil {
		t.Fatalf("LoadKeywordsCSV: %v", err)
	}
	want := []string{"Emmi", "Ricola", "Zweifel"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := LoadKeywordsCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("missing file should fail")
	}
}
