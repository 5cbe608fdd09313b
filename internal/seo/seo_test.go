package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapBuild(t *testing.T) {
	b := NewSitemapBuilder("https://emberhaus.example/")
	updated := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	b.AddHomepage(time.Time{})
	b.AddIndex(Entry{Path: "events"})
	b.AddEntries([]Entry{{Path: "/events/full-moon", UpdatedAt: updated}}, ChangeFreqWeekly, "0.6")
	require.Equal(t, 3, b.Len())

	raw, err := b.Build()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), xml.Header))

	var doc urlSet
	require.NoError(t, xml.Unmarshal(raw, &doc))
	require.Len(t, doc.URLs, 3)
	assert.Equal(t, "https://emberhaus.example/", doc.URLs[0].Loc)
	assert.Empty(t, doc.URLs[0].LastMod)
	assert.Equal(t, "https://emberhaus.example/events", doc.URLs[1].Loc)
	assert.Equal(t, "https://emberhaus.example/events/full-moon", doc.URLs[2].Loc)
	assert.Equal(t, "2025-03-01T09:00:00Z", doc.URLs[2].LastMod)
}

func TestRobots(t *testing.T) {
	txt := Robots("https://emberhaus.example", false)
	assert.Contains(t, txt, "Disallow: /admin\n")
	assert.Contains(t, txt, "Sitemap: https://emberhaus.example/sitemap.xml")

	staging := Robots("https://staging.example", true)
	assert.Equal(t, "User-agent: *\nDisallow: /\n", staging)
}
