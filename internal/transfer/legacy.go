package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emberhaus/internal/db"
	"github.com/emberhaus/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Legacy file names read by ImportLegacy.
const (
	LegacyJournalFile = "journal.json"
	LegacyEventsFile  = "events.json"
	LegacyRitualsFile = "rituals.json"
	LegacyPagesFile   = "pages.json"
)

// ImportReport summarises one legacy file.
type ImportReport struct {
	File     string   `json:"file"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}

// flexString accepts a JSON string, number or bool.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(string(data))
	return nil
}

func (f flexString) ptr() *string {
	if f == "" {
		return nil
	}
	s := string(f)
	return &s
}

// flexList accepts an array of strings or a comma separated string.
type flexList []string

func (f *flexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = nil
		return nil
	}
	if data[0] == '[' {
		var items []flexString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(flexList, 0, len(items))
		for _, item := range items {
			if v := strings.TrimSpace(string(item)); v != "" {
				out = append(out, v)
			}
		}
		*f = out
		return nil
	}
	var s flexString
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexList(db.SplitList(string(s)))
	return nil
}

// flexBool accepts true/false, "true"/"false", "yes"/"no" and 0/1.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(string(s)) {
	case "true", "1", "yes", "published":
		*f = true
	case "", "false", "0", "no", "draft":
		*f = false
	default:
		return fmt.Errorf("not a boolean: %s", data)
	}
	return nil
}

type legacyVisibility struct {
	Published   *flexBool `json:"published"`
	IsPublished *flexBool `json:"isPublished"`
}

// published prefers isPublished, then published. Legacy rows without either flag were
// live on the old site.
func (v legacyVisibility) published() *bool {
	value := true
	switch {
	case v.IsPublished != nil:
		value = bool(*v.IsPublished)
	case v.Published != nil:
		value = bool(*v.Published)
	}
	return &value
}

type legacyAuthor struct {
	Name   flexString `json:"name"`
	Avatar flexString `json:"avatar"`
}

// UnmarshalJSON accepts a bare author name as well as an object.
func (a *legacyAuthor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain legacyAuthor
		return json.Unmarshal(data, (*plain)(a))
	}
	return json.Unmarshal(data, &a.Name)
}

type legacyJournal struct {
	legacyVisibility
	ID         flexString   `json:"id"`
	Slug       flexString   `json:"slug"`
	Title      flexString   `json:"title"`
	Excerpt    flexString   `json:"excerpt"`
	Content    flexString   `json:"content"`
	Date       flexString   `json:"date"`
	ReadTime   flexString   `json:"readTime"`
	Categories flexList     `json:"categories"`
	Category   flexString   `json:"category"`
	Author     legacyAuthor `json:"author"`
	Image      flexString   `json:"image"`
	ImageAlt   flexString   `json:"imageAlt"`
}

type legacyEvent struct {
	legacyVisibility
	ID               flexString `json:"id"`
	Slug             flexString `json:"slug"`
	Title            flexString `json:"title"`
	Category         flexString `json:"category"`
	Description      flexString `json:"description"`
	ShortDescription flexString `json:"shortDescription"`
	Image            flexString `json:"image"`
	Date             flexString `json:"date"`
	Time             flexString `json:"time"`
	Location         flexString `json:"location"`
	Capacity         flexString `json:"capacity"`
	Price            flexString `json:"price"`
}

type legacyRitual struct {
	legacyVisibility
	ID               flexString        `json:"id"`
	Slug             flexString        `json:"slug"`
	Title            flexString        `json:"title"`
	Subtitle         flexString        `json:"subtitle"`
	ShortDescription flexString        `json:"shortDescription"`
	Description      flexString        `json:"description"`
	LongDescription  flexString        `json:"longDescription"`
	Image            flexString        `json:"image"`
	Duration         flexString        `json:"duration"`
	Instructor       db.Instructor     `json:"instructor"`
	Schedule         []db.ScheduleItem `json:"schedule"`
	Benefits         flexList          `json:"benefits"`
	FAQ              []db.FAQItem      `json:"faq"`
	FAQs             []db.FAQItem      `json:"faqs"`
}

type legacySection struct {
	ID              flexString      `json:"id"`
	Page            flexString      `json:"page"`
	Section         flexString      `json:"section"`
	Title           flexString      `json:"title"`
	Subtitle        flexString      `json:"subtitle"`
	Content         json.RawMessage `json:"content"`
	BackgroundImage flexString      `json:"backgroundImage"`
	OverlayOpacity  *float64        `json:"overlayOpacity"`
}

// ImportLegacy reads the legacy flat files from dir. Missing files are skipped and rows
// whose slug (or page and section) already exists are left alone.
func ImportLegacy(gdb *gorm.DB, dir string, log *zap.Logger) ([]ImportReport, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var reports []ImportReport

	journal := service.NewJournalService(gdb)
	report, err := importFile(dir, LegacyJournalFile, log, func(row legacyJournal) error {
		categories := []string(row.Categories)
		if len(categories) == 0 && row.Category != "" {
			categories = []string{string(row.Category)}
		}
		_, err := journal.Create(service.JournalPostInput{
			Slug:       row.Slug.ptr(),
			Title:      row.Title.ptr(),
			Excerpt:    row.Excerpt.ptr(),
			Content:    row.Content.ptr(),
			Date:       row.Date.ptr(),
			ReadTime:   row.ReadTime.ptr(),
			Categories: &categories,
			Author:     &service.AuthorInput{Name: row.Author.Name.ptr(), Avatar: row.Author.Avatar.ptr()},
			Image:      row.Image.ptr(),
			ImageAlt:   row.ImageAlt.ptr(),
			Published:  row.published(),
		})
		return err
	})
	if err != nil {
		return reports, err
	}
	reports = appendReport(reports, report)

	events := service.NewEventService(gdb)
	report, err = importFile(dir, LegacyEventsFile, log, func(row legacyEvent) error {
		description := row.Description
		if description == "" {
			description = row.ShortDescription
		}
		input := service.EventInput{
			Slug:        row.Slug.ptr(),
			Title:       row.Title.ptr(),
			Category:    row.Category.ptr(),
			Description: description.ptr(),
			Image:       row.Image.ptr(),
			Date:        row.Date.ptr(),
			Time:        row.Time.ptr(),
			Location:    row.Location.ptr(),
			Price:       row.Price.ptr(),
			Published:   row.published(),
		}
		if row.Capacity != "" {
			capacity, err := strconv.Atoi(string(row.Capacity))
			if err != nil {
				return fmt.Errorf("capacity %q is not a number", row.Capacity)
			}
			input.Capacity = &capacity
		}
		_, err := events.Create(input)
		return err
	})
	if err != nil {
		return reports, err
	}
	reports = appendReport(reports, report)

	rituals := service.NewRitualService(gdb)
	report, err = importFile(dir, LegacyRitualsFile, log, func(row legacyRitual) error {
		short := row.ShortDescription
		if short == "" {
			short = row.Description
		}
		faq := row.FAQ
		if len(faq) == 0 {
			faq = row.FAQs
		}
		faq = compactFAQ(faq)
		schedule := compactSchedule(row.Schedule)
		benefits := []string(row.Benefits)
		_, err := rituals.Create(service.RitualInput{
			Slug:             row.Slug.ptr(),
			Title:            row.Title.ptr(),
			Subtitle:         row.Subtitle.ptr(),
			ShortDescription: short.ptr(),
			LongDescription:  row.LongDescription.ptr(),
			Image:            row.Image.ptr(),
			Duration:         row.Duration.ptr(),
			Instructor: &service.InstructorInput{
				Name:  &row.Instructor.Name,
				Bio:   &row.Instructor.Bio,
				Image: &row.Instructor.Image,
			},
			Schedule:  &schedule,
			Benefits:  &benefits,
			FAQ:       &faq,
			Published: row.published(),
		})
		return err
	})
	if err != nil {
		return reports, err
	}
	reports = appendReport(reports, report)

	sections := service.NewSectionService(gdb)
	report, err = importFile(dir, LegacyPagesFile, log, func(row legacySection) error {
		content, err := legacySectionContent(row.Content)
		if err != nil {
			return err
		}
		_, err = sections.Create(service.PageContentInput{
			Page:            row.Page.ptr(),
			Section:         row.Section.ptr(),
			Title:           row.Title.ptr(),
			Subtitle:        row.Subtitle.ptr(),
			Content:         content,
			BackgroundImage: row.BackgroundImage.ptr(),
			OverlayOpacity:  row.OverlayOpacity,
		})
		return err
	})
	if err != nil {
		return reports, err
	}
	reports = appendReport(reports, report)

	return reports, nil
}

func appendReport(reports []ImportReport, report *ImportReport) []ImportReport {
	if report == nil {
		return reports
	}
	return append(reports, *report)
}

// importFile decodes one legacy array and feeds each element to create. A nil report
// means the file does not exist.
func importFile[T any](dir, name string, log *zap.Logger, create func(T) error) (*ImportReport, error) {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("legacy file not found, skipping", zap.String("file", path))
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	report := &ImportReport{File: name}
	for i, item := range items {
		var row T
		if err := json.Unmarshal(item, &row); err != nil {
			report.Failed = append(report.Failed, fmt.Sprintf("#%d: %v", i, err))
			continue
		}
		err := create(row)
		switch {
		case err == nil:
			report.Imported++
		case errors.Is(err, service.ErrSlugTaken), errors.Is(err, service.ErrSectionTaken):
			report.Skipped++
		default:
			report.Failed = append(report.Failed, fmt.Sprintf("#%d: %v", i, err))
		}
	}
	log.Info("legacy file imported",
		zap.String("file", name),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// legacyFieldAliases maps old free-form section keys onto the section schema.
var legacyFieldAliases = map[string]string{
	"title":       "heading",
	"subtitle":    "subheading",
	"buttonText":  "ctaLabel",
	"buttonLink":  "ctaHref",
	"buttonUrl":   "ctaHref",
	"video":       "videoUrl",
	"videoSrc":    "videoUrl",
	"poster":      "posterUrl",
	"posterImage": "posterUrl",
	"quote":       "text",
	"author":      "attribution",
	"features":    "items",
}

var sectionFields = map[service.SectionKind][]string{
	service.SectionText:     {"body"},
	service.SectionHero:     {"heading", "subheading", "ctaLabel", "ctaHref", "videoUrl", "posterUrl"},
	service.SectionFeatures: {"items"},
	service.SectionQuote:    {"text", "attribution"},
	service.SectionCTA:      {"label", "href", "note"},
}

// legacySectionContent turns an old untyped content blob into a tagged section. Blobs
// that already carry a kind pass through unchanged.
func legacySectionContent(raw json.RawMessage) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		var text string
		if json.Unmarshal(raw, &text) == nil && strings.TrimSpace(text) != "" {
			return json.Marshal(map[string]string{"kind": string(service.SectionText), "body": text})
		}
		return nil, errors.New("section content is not an object")
	}
	if _, ok := fields["kind"]; ok {
		return raw, nil
	}

	normalized := make(map[string]json.RawMessage, len(fields))
	for key, value := range fields {
		if alias, ok := legacyFieldAliases[key]; ok {
			key = alias
		}
		if _, exists := normalized[key]; !exists {
			normalized[key] = value
		}
	}

	var kind service.SectionKind
	switch {
	case normalized["videoUrl"] != nil || normalized["heading"] != nil:
		kind = service.SectionHero
	case normalized["items"] != nil:
		kind = service.SectionFeatures
	case normalized["text"] != nil && normalized["attribution"] != nil:
		kind = service.SectionQuote
	case normalized["label"] != nil && normalized["href"] != nil:
		kind = service.SectionCTA
	default:
		kind = service.SectionText
		for _, key := range []string{"body", "text", "content", "description"} {
			if value, ok := normalized[key]; ok {
				normalized["body"] = value
				break
			}
		}
	}

	out := map[string]interface{}{"kind": kind}
	for _, key := range sectionFields[kind] {
		if value, ok := normalized[key]; ok {
			out[key] = value
		}
	}
	return json.Marshal(out)
}

// The legacy editor left empty rows behind; the services refuse them, so they are
// dropped here before import.
func compactSchedule(items []db.ScheduleItem) []db.ScheduleItem {
	out := make([]db.ScheduleItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Time) != "" || strings.TrimSpace(item.Activity) != "" {
			out = append(out, item)
		}
	}
	return out
}

func compactFAQ(items []db.FAQItem) []db.FAQItem {
	out := make([]db.FAQItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Question) != "" {
			out = append(out, item)
		}
	}
	return out
}
