package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html><head>
<title>Election Commission sets March 5 date</title>
<meta property="article:published_time" content="2026-02-19T08:30:00+05:45">
</head><body>
<nav><a href="/">Home</a> <a href="/politics">Politics</a></nav>
<article>
  <h1>Election Commission sets March 5 date</h1>
  <p>The Election Commission on Thursday confirmed that the House of Representatives election will be held on March 5, 2026, and asked all political parties to submit their closed lists of proportional representation candidates within the stipulated deadline.</p>
  <p>Officials said the commission has already printed ballot papers for all 165 constituencies and that security plans for polling centres across the country would be finalised with the Home Ministry next week.</p>
  <p>Share via Email</p>
  <p>Chief Election Commissioner urged voters to check their names on the updated voter list before the registration window closes, adding that mobile polling booths would be deployed in remote districts for the first time.</p>
  <p>Advertisement</p>
</article>
<footer>Tags: election, commission</footer>
</body></html>`

func TestExtract(t *testing.T) {
	t.Parallel()

	got, err := New().Extract("https://kathmandupost.com/politics/2026/02/19/ec-date", []byte(articlePage))
	require.NoError(t, err)

	assert.Contains(t, got.Title, "Election Commission sets March 5 date")
	assert.Contains(t, got.Text, "House of Representatives election will be held on March 5")
	assert.Contains(t, got.Text, "mobile polling booths")
	assert.NotContains(t, got.Text, "Share via Email")
	assert.NotContains(t, got.Text, "Advertisement")
	assert.NotContains(t, got.Text, "\n\n\n")

	require.NotNil(t, got.PublishedAt)
	want := time.Date(2026, time.February, 19, 8, 30, 0, 0, time.FixedZone("NPT", 5*3600+45*60))
	assert.True(t, got.PublishedAt.Equal(want), "published at %v", got.PublishedAt)
}

func TestExtractRejectsEmptyPage(t *testing.T) {
	t.Parallel()

	_, err := New().Extract("https://example.com/a", []byte("   "))
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	in := "Polls open at 7 am.\nRead Time : < 1 minute\n\n\n\nShare on Facebook | Share on Twitter\n" +
		"[Photo Gallery] Voters queued early.\nPrint this page\nRelated Articles:\n" +
		"2026 February 19 Thursday 08:30\nPublished on: 19 Feb\nTags: polls, voters"

	assert.Equal(t, "Polls open at 7 am.\n\n Voters queued early.", CleanText(in))
}

func TestPublishedAtFallbacks(t *testing.T) {
	t.Parallel()

	cases := []struct {
		html string
		want time.Time
	}{
		{`<meta name="date" content="2026-02-17">`, time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)},
		{`<time datetime="2026-02-16T10:00:00Z">Feb 16</time>`, time.Date(2026, 2, 16, 10, 0, 0, 0, time.UTC)},
		{`<time>2026-02-15</time>`, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(tc.html))
		require.NoError(t, err)
		got := publishedAt(doc)
		require.NotNil(t, got, tc.html)
		assert.True(t, got.Equal(tc.want), "%s -> %v", tc.html, got)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p>no dates here</p>`))
	require.NoError(t, err)
	assert.Nil(t, publishedAt(doc))
}
