// Package seo builds the sitemap and robots.txt served by the public site.
package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq is the changefreq hint of a URL.
type ChangeFreq string

const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// URL is one entry of the sitemap.
type URL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Entry is a published item to list: its path below the site root and its last change.
type Entry struct {
	Path      string
	UpdatedAt time.Time
}

// SitemapBuilder collects URLs relative to one site root.
type SitemapBuilder struct {
	siteURL string
	urls    []URL
}

// NewSitemapBuilder creates a builder for siteURL (no trailing slash needed).
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{siteURL: strings.TrimRight(siteURL, "/")}
}

// AddHomepage adds the site root.
func (b *SitemapBuilder) AddHomepage(updatedAt time.Time) {
	b.add(Entry{Path: "/", UpdatedAt: updatedAt}, ChangeFreqDaily, "1.0")
}

// AddIndex adds a collection index page such as /events.
func (b *SitemapBuilder) AddIndex(entry Entry) {
	b.add(entry, ChangeFreqDaily, "0.8")
}

// AddEntries adds detail pages.
func (b *SitemapBuilder) AddEntries(entries []Entry, freq ChangeFreq, priority string) {
	for _, entry := range entries {
		b.add(entry, freq, priority)
	}
}

func (b *SitemapBuilder) add(entry Entry, freq ChangeFreq, priority string) {
	path := entry.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := URL{
		Loc:        b.siteURL + path,
		ChangeFreq: freq,
		Priority:   priority,
	}
	if !entry.UpdatedAt.IsZero() {
		u.LastMod = entry.UpdatedAt.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, u)
}

// Len reports the number of URLs added.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build renders the sitemap XML document.
func (b *SitemapBuilder) Build() ([]byte, error) {
	body, err := xml.MarshalIndent(urlSet{XMLNS: XMLNamespace, URLs: b.urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Robots renders robots.txt: admin and API paths are disallowed and the sitemap is
// referenced. disallowAll blocks every crawler, for staging sites.
func Robots(siteURL string, disallowAll bool) string {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")
	if disallowAll {
		sb.WriteString("Disallow: /\n")
		return sb.String()
	}
	for _, path := range []string{"/admin", "/api/"} {
		sb.WriteString("Disallow: " + path + "\n")
	}
	sb.WriteString("Allow: /\n")
	if siteURL != "" {
		sb.WriteString("\nSitemap: " + strings.TrimRight(siteURL, "/") + "/sitemap.xml\n")
	}
	return sb.String()
}
