package transfer

import (
	"encoding/json"
	"fmt"

	"github.com/emberhaus/internal/db"
	"github.com/emberhaus/internal/service"
	"gorm.io/gorm"
)

// SeedDemo fills an empty database with a small set of sample content. Collections
// that already hold rows are left untouched.
func SeedDemo(gdb *gorm.DB) (Counts, error) {
	var counts Counts

	// 创建首页区块
	if empty, err := isEmpty[db.PageContent](gdb); err != nil {
		return counts, err
	} else if empty {
		sections := service.NewSectionService(gdb)
		for _, s := range demoSections {
			if _, err := sections.Create(s); err != nil {
				return counts, fmt.Errorf("seeding section: %w", err)
			}
			counts.Pages++
		}
	}

	// 创建测试活动
	if empty, err := isEmpty[db.Event](gdb); err != nil {
		return counts, err
	} else if empty {
		events := service.NewEventService(gdb)
		for _, e := range demoEvents {
			if _, err := events.Create(e); err != nil {
				return counts, fmt.Errorf("seeding event: %w", err)
			}
			counts.Events++
		}
	}

	// 创建测试仪式
	if empty, err := isEmpty[db.Ritual](gdb); err != nil {
		return counts, err
	} else if empty {
		rituals := service.NewRitualService(gdb)
		for _, r := range demoRituals {
			if _, err := rituals.Create(r); err != nil {
				return counts, fmt.Errorf("seeding ritual: %w", err)
			}
			counts.Rituals++
		}
	}

	// 创建测试文章
	if empty, err := isEmpty[db.JournalPost](gdb); err != nil {
		return counts, err
	} else if empty {
		journal := service.NewJournalService(gdb)
		for _, p := range demoPosts {
			if _, err := journal.Create(p); err != nil {
				return counts, fmt.Errorf("seeding post: %w", err)
			}
			counts.Journal++
		}
	}

	if empty, err := isEmpty[db.StandalonePage](gdb); err != nil {
		return counts, err
	} else if empty {
		pages := service.NewStandalonePageService(gdb)
		for _, p := range demoPages {
			if _, err := pages.Create(p); err != nil {
				return counts, fmt.Errorf("seeding page: %w", err)
			}
			counts.StandalonePages++
		}
	}

	return counts, nil
}

func isEmpty[T any](gdb *gorm.DB) (bool, error) {
	var count int64
	if err := gdb.Model(new(T)).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

func str(s string) *string { return &s }

func yes() *bool {
	v := true
	return &v
}

var demoSections = []service.PageContentInput{
	{
		Page:           str("home"),
		Section:        str("hero"),
		Content:        json.RawMessage(`{"kind":"hero","heading":"Slow heat, good company","subheading":"A bathhouse for unhurried evenings.","ctaLabel":"See what's on","ctaHref":"/events","videoUrl":"/uploads/demo/hero.mp4","posterUrl":"/uploads/demo/hero.jpg"}`),
		OverlayOpacity: func() *float64 { v := 0.35; return &v }(),
	},
	{
		Page:    str("home"),
		Section: str("intro"),
		Title:   str("What we do"),
		Content: json.RawMessage(`{"kind":"features","items":[{"title":"Wood-fired sauna","body":"Soft löyly from a birch-fed stove.","icon":"flame"},{"title":"Cold plunge","body":"Spring-fed water, all year.","icon":"drop"},{"title":"Guided rituals","body":"Hosted sessions for beginners and regulars.","icon":"leaf"}]}`),
	},
	{
		Page:    str("home"),
		Section: str("quote"),
		Content: json.RawMessage(`{"kind":"quote","text":"The quietest two hours of my week.","attribution":"A Thursday regular"}`),
	},
}

var demoEvents = []service.EventInput{
	{
		Title:       str("Full Moon Sauna"),
		Category:    str("Sauna"),
		Description: str("An evening session timed to the full moon, with **three rounds** and a fireside tea."),
		Date:        str("2030-01-12"),
		Time:        str("19:00"),
		Location:    str("Main bathhouse"),
		Capacity:    func() *int { v := 12; return &v }(),
		Price:       str("€35"),
		Published:   yes(),
	},
	{
		Title:       str("Breathwork & Plunge"),
		Category:    str("Workshop"),
		Description: str("Learn a simple breathing practice before your first cold plunge."),
		Date:        str("2030-02-02"),
		Time:        str("10:00"),
		Location:    str("Garden deck"),
		Price:       str("€28"),
		Published:   yes(),
	},
}

var demoRituals = []service.RitualInput{
	{
		Title:            str("Finnish Löyly"),
		Subtitle:         str("The classic three-round sauna"),
		ShortDescription: str("Heat, cool, rest. Repeat three times."),
		LongDescription:  str("A hosted introduction to the **Finnish** way: steam from the stones, a cold rinse and a long rest."),
		Duration:         str("90 minutes"),
		Instructor:       &service.InstructorInput{Name: str("Aino"), Bio: str("Sauna master since 2012.")},
		Schedule:         &[]db.ScheduleItem{{Time: "0:00", Activity: "Welcome tea"}, {Time: "0:15", Activity: "First round"}, {Time: "1:15", Activity: "Rest"}},
		Benefits:         &[]string{"Deep rest", "Better sleep"},
		FAQ:              &[]db.FAQItem{{Question: "What should I bring?", Answer: "Just a swimsuit. Towels are provided."}},
		Published:        yes(),
	},
}

var demoPosts = []service.JournalPostInput{
	{
		Title:      str("A Beginner's Guide to Löyly"),
		Excerpt:    str("What the steam is, and how to ask for more."),
		Content:    str("Löyly is the steam that rises when water meets hot stones.\n\nAsk before you throw."),
		Date:       str("2025-01-15"),
		Categories: &[]string{"Sauna Culture"},
		Author:     &service.AuthorInput{Name: str("Aino")},
		Published:  yes(),
	},
	{
		Title:      str("Choosing a Ladle"),
		Excerpt:    str("Wood, copper or steel."),
		Content:    str("A good ladle is **long** enough to keep your hand out of the heat."),
		Date:       str("2025-02-03"),
		Categories: &[]string{"Ritual Tools"},
		Published:  yes(),
	},
}

var demoPages = []service.StandalonePageInput{
	{
		Title:           str("House Rules"),
		Content:         str("- Shower before entering\n- Keep phones in the lockers\n- Speak softly"),
		MetaDescription: str("How we keep the bathhouse calm."),
		Published:       yes(),
	},
}
