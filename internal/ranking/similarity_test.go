package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "election commission sets march 5 date", Normalize("  ELECTION COMMISSION: sets March-5,\tdate! "))
	assert.Equal(t, "cpn uml snake_case", Normalize("CPN-UML snake_case"))
	assert.Equal(t, "", Normalize("!!! ... ???"))
	assert.Equal(t, "", Normalize(""))
}

// Golden ratios computed with Python's difflib.SequenceMatcher over the same normalization.
func TestSimilarityGolden(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want float64
	}{
		{"Election Commission sets March 5 date", "Election commission sets March-5 date!", 1.0},
		{"Election Commission sets March 5 date", "ELECTION COMMISSION: sets March 5, date.", 1.0},
		{"Election Commission sets March 5 date", "Election Commission sets March 5 poll date", 0.9367},
		{"CPN-UML names candidates for March 5 polls", "CPN-UML names new candidates for March 5 poll", 0.9425},
		{"Nepali Congress finalises candidate list", "Nepali Congress finalizes list of candidates", 0.8333},
		{"Election Commission fixes March 5 for polls", "Commission fixes March 5 poll date", 0.7532},
		{"Election Commission sets March 5 date", "EC fixes March 5 as poll date", 0.5455},
		{"Election Commission sets March 5 date", "Voter list update begins", 0.2951},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Similarity(tc.a, tc.b), 0.0001, "%q vs %q", tc.a, tc.b)
		assert.InDelta(t, tc.want, Similarity(tc.b, tc.a), 0.05, "reversed %q vs %q", tc.a, tc.b)
	}
}

func TestSimilarityEmptySide(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Similarity("Election Commission sets March 5 date", ""))
	assert.Zero(t, Similarity("", ""))
	assert.Zero(t, Similarity("!!!", "abc"))
}
