package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/scorecard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryNames(cfg *schema.ScorecardConfig) []string {
	names := make([]string, len(cfg.Categories))
	for i, c := range cfg.Categories {
		names[i] = c.Name
	}
	return names
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "retail.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "retail", cfg.Name)
	assert.Equal(t, "2024.1", cfg.Version)
	assert.Equal(t, []string{"Credit", "Income"}, categoryNames(cfg))
	assert.Len(t, cfg.Categories[0].Variables[0].Bands, 4)
	assert.Equal(t, schema.Review, cfg.BucketMapping["C"].Decision)
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, "credit_score < 500", cfg.Rules[0].Condition)
	require.NotNil(t, cfg.Metadata.TargetApprovalRate)
	assert.Equal(t, 20.0, *cfg.Metadata.TargetApprovalRate)
}

func TestLoadJSONKeepsDocumentOrder(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "retail.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Income", "Credit"}, categoryNames(cfg))
	assert.Equal(t, 60.0, cfg.Categories[1].Weight)
}

func TestLoadSequenceCategories(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "nested", "sequence.yml"))
	require.NoError(t, err)
	require.Len(t, cfg.Categories, 1)
	assert.Equal(t, "Only", cfg.Categories[0].Name)
	require.NotNil(t, cfg.Categories[0].Variables[0].Max)
	assert.Equal(t, 70.0, *cfg.Categories[0].Variables[0].Max)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join("testdata", "nested", "drafts", "unknown_key.yaml")
	_, err := Load(path)
	require.Error(t, err)

	var docErr *DocumentError
	require.True(t, errors.As(err, &docErr), "got %T: %v", err, err)
	assert.Equal(t, path, docErr.Path)
	assert.NotEmpty(t, docErr.Problems)
	assert.Regexp(t, "bogus|wieght", err.Error())
}

func TestParseProblems(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Empty Document", ""},
		{"Missing Name", "categories: []\nbucketMapping: {}\n"},
		{"Wrong Weight Type", "name: x\ncategories:\n  C:\n    weight: heavy\n    variables: []\nbucketMapping: {}\n"},
		{"Bad Decision", "name: x\ncategories: []\nbucketMapping:\n  A: { min: 0, max: 100, decision: maybe }\n"},
		{"Unknown Rule Key", "name: x\ncategories: []\nbucketMapping: {}\nrules:\n  - { id: r, condition: a > 1, when: now }\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), YAML)
			var docErr *DocumentError
			require.True(t, errors.As(err, &docErr), "got %v", err)
			assert.NotEmpty(t, docErr.Problems)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("name: [unclosed"), YAML)
	require.Error(t, err)
	var docErr *DocumentError
	assert.False(t, errors.As(err, &docErr))
}

func TestParseCategoryNameMismatch(t *testing.T) {
	doc := `name: x
categories:
  Credit:
    name: Income
    weight: 100
    variables: []
bucketMapping: {}
`
	_, err := Parse([]byte(doc), YAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match its key")
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, JSON, DetectFormat("card.JSON", nil))
	assert.Equal(t, YAML, DetectFormat("card.yml", []byte("{}")))
	assert.Equal(t, JSON, DetectFormat("card", []byte("  {\"name\": 1}")))
	assert.Equal(t, YAML, DetectFormat("card", []byte("name: x")))
}

func TestMarshalRoundTrip(t *testing.T) {
	original, err := Load(filepath.Join("testdata", "retail.json"))
	require.NoError(t, err)

	for _, format := range []Format{YAML, JSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(original, format)
			require.NoError(t, err)
			back, err := Parse(data, format)
			require.NoError(t, err)
			assert.Equal(t, categoryNames(original), categoryNames(back))
			assert.Equal(t, original.BucketMapping, back.BucketMapping)
		})
	}
}

func TestMarshalYAMLWritesMapping(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "nested", "sequence.yml"))
	require.NoError(t, err)
	data, err := Marshal(cfg, YAML)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "categories:\n  Only:\n"), string(data))
}

func TestDiscover(t *testing.T) {
	files, err := Discover("testdata", nil)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(mustAbs(t, "testdata"), f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{
		"nested/drafts/unknown_key.yaml",
		"nested/sequence.yml",
		"retail.json",
		"retail.yaml",
	}, rel)

	files, err = Discover("testdata", []string{"drafts/", "*.json"})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDiscoverSingleFile(t *testing.T) {
	files, err := Discover(filepath.Join("testdata", "retail.yaml"), nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, filepath.IsAbs(files[0]))
}

func TestDiscoverMissing(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), nil)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func mustAbs(t *testing.T, p string) string {
	t.Helper()
	abs, err := filepath.Abs(p)
	require.NoError(t, err)
	return abs
}

func BenchmarkLoad(b *testing.B) {
	path := filepath.Join("testdata", "retail.yaml")
	for b.Loop() {
		_, _ = Load(path)
	}
}
