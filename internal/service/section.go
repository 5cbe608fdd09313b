package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/emberhaus/internal/markup"
)

// SectionKind discriminates page section documents.
type SectionKind string

const (
	SectionText     SectionKind = "text"
	SectionHero     SectionKind = "hero"
	SectionFeatures SectionKind = "features"
	SectionQuote    SectionKind = "quote"
	SectionCTA      SectionKind = "cta"
)

// FeatureItem is one entry of a features section.
type FeatureItem struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
}

type textSection struct {
	Kind SectionKind `json:"kind"`
	Body string      `json:"body"`
}

type heroSection struct {
	Kind       SectionKind `json:"kind"`
	Heading    string      `json:"heading"`
	Subheading string      `json:"subheading"`
	CTALabel   string      `json:"ctaLabel"`
	CTAHref    string      `json:"ctaHref"`
	VideoURL   string      `json:"videoUrl"`
	PosterURL  string      `json:"posterUrl"`
}

type featuresSection struct {
	Kind  SectionKind   `json:"kind"`
	Items []FeatureItem `json:"items"`
}

type quoteSection struct {
	Kind        SectionKind `json:"kind"`
	Text        string      `json:"text"`
	Attribution string      `json:"attribution"`
}

type ctaSection struct {
	Kind  SectionKind `json:"kind"`
	Label string      `json:"label"`
	Href  string      `json:"href"`
	Note  string      `json:"note"`
}

// SectionDocument is the decoded form templates work with; only the fields of its
// kind are populated.
type SectionDocument struct {
	Kind        SectionKind
	Body        string
	Heading     string
	Subheading  string
	CTALabel    string
	CTAHref     string
	VideoURL    string
	PosterURL   string
	Items       []FeatureItem
	Text        string
	Attribution string
	Label       string
	Href        string
	Note        string
}

// ParseSection validates a submitted section document and returns its canonical JSON
// encoding. Unknown kinds and fields foreign to the kind are rejected.
func ParseSection(raw []byte) (SectionDocument, []byte, error) {
	trimmedRaw := bytes.TrimSpace(raw)
	if len(trimmedRaw) == 0 || bytes.Equal(trimmedRaw, []byte("null")) {
		return SectionDocument{}, nil, invalid("content is required")
	}

	var head struct {
		Kind SectionKind `json:"kind"`
	}
	if err := json.Unmarshal(trimmedRaw, &head); err != nil {
		return SectionDocument{}, nil, invalid("content must be a JSON object with a kind")
	}

	var (
		doc    SectionDocument
		target interface{}
	)
	switch head.Kind {
	case SectionText:
		target = &textSection{}
	case SectionHero:
		target = &heroSection{}
	case SectionFeatures:
		target = &featuresSection{}
	case SectionQuote:
		target = &quoteSection{}
	case SectionCTA:
		target = &ctaSection{}
	case "":
		return SectionDocument{}, nil, invalid("content kind is required")
	default:
		return SectionDocument{}, nil, invalid("unknown content kind %q", head.Kind)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmedRaw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return SectionDocument{}, nil, invalid("%s content: %v", head.Kind, err)
	}

	switch v := target.(type) {
	case *textSection:
		body, err := markup.RichText(v.Body)
		if err != nil {
			return SectionDocument{}, nil, err
		}
		if body == "" {
			return SectionDocument{}, nil, invalid("text content needs a body")
		}
		v.Body = body
		doc = SectionDocument{Kind: SectionText, Body: body}
	case *heroSection:
		trimFields(&v.Heading, &v.Subheading, &v.CTALabel, &v.CTAHref, &v.VideoURL, &v.PosterURL)
		if v.Heading == "" {
			return SectionDocument{}, nil, invalid("hero content needs a heading")
		}
		doc = SectionDocument{
			Kind:       SectionHero,
			Heading:    v.Heading,
			Subheading: v.Subheading,
			CTALabel:   v.CTALabel,
			CTAHref:    v.CTAHref,
			VideoURL:   v.VideoURL,
			PosterURL:  v.PosterURL,
		}
	case *featuresSection:
		items := make([]FeatureItem, 0, len(v.Items))
		for _, item := range v.Items {
			trimFields(&item.Title, &item.Body, &item.Icon)
			if item.Title == "" {
				return SectionDocument{}, nil, invalid("every feature needs a title")
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			return SectionDocument{}, nil, invalid("features content needs at least one item")
		}
		v.Items = items
		doc = SectionDocument{Kind: SectionFeatures, Items: items}
	case *quoteSection:
		trimFields(&v.Text, &v.Attribution)
		if v.Text == "" {
			return SectionDocument{}, nil, invalid("quote content needs text")
		}
		doc = SectionDocument{Kind: SectionQuote, Text: v.Text, Attribution: v.Attribution}
	case *ctaSection:
		trimFields(&v.Label, &v.Href, &v.Note)
		if v.Label == "" || v.Href == "" {
			return SectionDocument{}, nil, invalid("cta content needs a label and href")
		}
		doc = SectionDocument{Kind: SectionCTA, Label: v.Label, Href: v.Href, Note: v.Note}
	}

	canonical, err := json.Marshal(target)
	if err != nil {
		return SectionDocument{}, nil, err
	}
	return doc, canonical, nil
}

// DecodeSection reads a stored document for rendering. Anything unreadable comes back
// as an empty document.
func DecodeSection(stored string) SectionDocument {
	doc, _, err := ParseSection([]byte(stored))
	if err != nil {
		return SectionDocument{}
	}
	return doc
}

func trimFields(fields ...*string) {
	for _, field := range fields {
		*field = strings.TrimSpace(*field)
	}
}
