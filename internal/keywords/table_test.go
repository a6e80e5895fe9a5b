package keywords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	t.Parallel()

	table := Default()
	assert.Equal(t, Weights{Tier1: 5, Tier2: 3, Tier3: 1}, table.Weights)
	assert.Equal(t, 5, table.Threshold)
	assert.Len(t, table.Tier1, 56)
	assert.Len(t, table.Tier2, 109)
	assert.Len(t, table.Tier3, 26)
	assert.Len(t, table.Exclusions, 202)
	assert.Equal(t, []string{"election commission", "निर्वाचन आयोग"}, table.GovernanceMarkers)

	body := table.BodyExclusions()
	require.Len(t, body, 19)
	terms := make([]string, 0, len(body))
	for _, ex := range body {
		terms = append(terms, ex.Term)
	}
	assert.Contains(t, terms, "NEPSE")
	assert.Contains(t, terms, "cyber attack")
	assert.NotContains(t, terms, "miss nepal")
}

func TestParseDedupesAndDefaultsScope(t *testing.T) {
	t.Parallel()

	raw := []byte(`
weights: {tier1: 5, tier2: 3, tier3: 1}
threshold: 5
tier1: ["Vote", " vote ", "ballot"]
tier2: ["alliance"]
tier3: ["parliament"]
exclusions:
  - {term: "cricket", scope: body}
  - {term: "Cricket", scope: title}
  - {term: "movie"}
`)
	table, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vote", "ballot"}, table.Tier1)
	assert.Equal(t, []ExclusionTerm{
		{Term: "cricket", Scope: ScopeBody},
		{Term: "movie", Scope: ScopeTitle},
	}, table.Exclusions)
}

func TestParseRejectsInvalidTables(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"zero weight":   "weights: {tier1: 0, tier2: 3, tier3: 1}\nthreshold: 5\ntier1: [a]",
		"no threshold":  "weights: {tier1: 5, tier2: 3, tier3: 1}\ntier1: [a]",
		"no terms":      "weights: {tier1: 5, tier2: 3, tier3: 1}\nthreshold: 5",
		"shared term":   "weights: {tier1: 5, tier2: 3, tier3: 1}\nthreshold: 5\ntier1: [vote]\ntier2: [VOTE]",
		"unknown scope": "weights: {tier1: 5, tier2: 3, tier3: 1}\nthreshold: 5\ntier1: [a]\nexclusions: [{term: x, scope: footer}]",
	}
	for name, raw := range cases {
		raw := raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights: {tier1: 7, tier2: 3, tier3: 1}\nthreshold: 7\ntier1: [vote]\n"), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, table.Weights.Tier1)
	assert.Equal(t, 7, table.Threshold)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	fallback, err := Load("")
	require.NoError(t, err)
	assert.Len(t, fallback.Tier1, 56)
}

func TestWithOverrides(t *testing.T) {
	t.Parallel()

	base := Default()
	tuned := base.WithOverrides(Weights{Tier2: 4}, 6)
	assert.Equal(t, Weights{Tier1: 5, Tier2: 4, Tier3: 1}, tuned.Weights)
	assert.Equal(t, 6, tuned.Threshold)
	assert.Equal(t, 3, base.Weights.Tier2)
}

func TestShippedKeywordsMatchDefaults(t *testing.T) {
	t.Parallel()

	table, err := Load(filepath.Join("..", "..", "configs", "keywords.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), table)
}
