package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emberhaus/internal/db"
	"github.com/emberhaus/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T, label string) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open("sqlite", fmt.Sprintf("file:transfer-%s-%s?mode=memory&cache=shared", name, label), nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := openTestDB(t, "src")
	counts, err := SeedDemo(src)
	require.NoError(t, err)
	require.Positive(t, counts.Total())

	draft := false
	_, err = service.NewJournalService(src).Create(service.JournalPostInput{
		Title:     str("Unfinished Thoughts"),
		Published: &draft,
	})
	require.NoError(t, err)

	snap, err := Export(src, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, snap.Journal, len(demoPosts)+1, "drafts are part of the snapshot")

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap))
	decoded, err := ReadSnapshot(&buf)
	require.NoError(t, err)

	dst := openTestDB(t, "dst")
	restored, err := Restore(dst, decoded, false)
	require.NoError(t, err)
	assert.Equal(t, counts.Total()+1, restored.Total())

	again, err := Export(dst, snap.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, snap.Journal, again.Journal)
	assert.Equal(t, snap.Rituals, again.Rituals)
	assert.JSONEq(t, string(snap.Pages[0].Content), string(again.Pages[0].Content))

	// Restoring twice upserts by id instead of duplicating.
	_, err = Restore(dst, decoded, false)
	require.NoError(t, err)
	var total int64
	require.NoError(t, dst.Model(&db.JournalPost{}).Count(&total).Error)
	assert.EqualValues(t, len(snap.Journal), total)
}

func TestRestoreReplaceEmptiesTables(t *testing.T) {
	gdb := openTestDB(t, "main")
	_, err := SeedDemo(gdb)
	require.NoError(t, err)

	snap := &Snapshot{
		Version: SnapshotVersion,
		Journal: []service.JournalPostView{{ID: 40, Slug: "only-post", Title: "Only Post", Published: true}},
	}
	counts, err := Restore(gdb, snap, true)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Total())

	var events, posts int64
	require.NoError(t, gdb.Model(&db.Event{}).Count(&events).Error)
	require.NoError(t, gdb.Model(&db.JournalPost{}).Count(&posts).Error)
	assert.Zero(t, events)
	assert.EqualValues(t, 1, posts)
}

func TestReadSnapshotRejectsUnknownVersion(t *testing.T) {
	_, err := ReadSnapshot(strings.NewReader(`{"version": 99}`))
	require.Error(t, err)
}

func writeLegacy(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0o644))
}

func TestImportLegacyToleratesFieldVariants(t *testing.T) {
	gdb := openTestDB(t, "main")
	dir := t.TempDir()

	writeLegacy(t, dir, LegacyJournalFile, []map[string]interface{}{
		{"id": "p-1", "title": "Old Post", "categories": "Sauna Culture, Ritual Tools", "isPublished": true, "author": "Aino", "date": "2023-04-01"},
		{"id": 2, "title": "Hidden Post", "categories": []string{"Notes"}, "published": "false"},
		{"title": "Old Post", "slug": "old-post"},
	})
	writeLegacy(t, dir, LegacyEventsFile, []map[string]interface{}{
		{"id": 7, "title": "Winter Solstice", "shortDescription": "Longest night sauna.", "date": "2023-12-21", "capacity": "14", "price": 30},
		{"title": "No Date"},
	})
	writeLegacy(t, dir, LegacyRitualsFile, []map[string]interface{}{
		{"title": "Smoke Sauna", "description": "Old-style heat.", "benefits": []string{"Rest", " ", "Warmth"},
			"schedule": []map[string]string{{"time": "0:00", "activity": "Light the stove"}, {"time": "", "activity": " "}},
			"faqs":     []map[string]string{{"question": "Hot?", "answer": "Very."}, {"question": " ", "answer": ""}}},
	})
	writeLegacy(t, dir, LegacyPagesFile, []map[string]interface{}{
		{"page": "home", "section": "hero", "content": map[string]string{"title": "Welcome", "video": "/hero.mp4", "buttonText": "Book", "buttonLink": "/events"}},
		{"page": "about", "section": "story", "content": map[string]string{"body": "We opened in 2019."}},
		{"page": "home", "section": "quote", "content": map[string]string{"kind": "quote", "text": "Lovely", "attribution": "Guest"}},
	})

	reports, err := ImportLegacy(gdb, dir, nil)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	byFile := map[string]ImportReport{}
	for _, r := range reports {
		byFile[r.File] = r
	}
	assert.Equal(t, 2, byFile[LegacyJournalFile].Imported)
	assert.Equal(t, 1, byFile[LegacyJournalFile].Skipped)
	assert.Equal(t, 1, byFile[LegacyEventsFile].Imported)
	assert.Len(t, byFile[LegacyEventsFile].Failed, 1)
	assert.Equal(t, 1, byFile[LegacyRitualsFile].Imported)
	assert.Equal(t, 3, byFile[LegacyPagesFile].Imported)

	journal := service.NewJournalService(gdb)
	post, err := journal.GetBySlug("old-post", true)
	require.NoError(t, err)
	assert.True(t, post.Published)
	assert.Equal(t, db.StringList{"Sauna Culture", "Ritual Tools"}, post.Categories)
	assert.Equal(t, "Aino", post.AuthorName)

	hidden, err := journal.GetBySlug("hidden-post", true)
	require.NoError(t, err)
	assert.False(t, hidden.Published)

	event, err := service.NewEventService(gdb).GetBySlug("winter-solstice", true)
	require.NoError(t, err)
	assert.Equal(t, 14, event.Capacity)
	assert.Equal(t, "30", event.Price)
	assert.Contains(t, event.Description, "Longest night sauna.")

	ritual, err := service.NewRitualService(gdb).GetBySlug("smoke-sauna", true)
	require.NoError(t, err)
	assert.Equal(t, "Old-style heat.", ritual.ShortDescription)
	assert.Equal(t, db.StringList{"Rest", "Warmth"}, ritual.Benefits)
	require.Len(t, ritual.FAQ, 1)
	assert.Equal(t, "Hot?", ritual.FAQ[0].Question)
	require.Len(t, ritual.Schedule, 1)
	assert.Equal(t, "Light the stove", ritual.Schedule[0].Activity)

	hero, err := service.NewSectionService(gdb).Find("home", "hero")
	require.NoError(t, err)
	doc := service.DecodeSection(hero.Content)
	assert.Equal(t, service.SectionHero, doc.Kind)
	assert.Equal(t, "Welcome", doc.Heading)
	assert.Equal(t, "/hero.mp4", doc.VideoURL)
	assert.Equal(t, "Book", doc.CTALabel)
}

func TestImportLegacySkipsMissingFiles(t *testing.T) {
	gdb := openTestDB(t, "main")
	reports, err := ImportLegacy(gdb, t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestCopyAllKeepsIDs(t *testing.T) {
	src := openTestDB(t, "src")
	dst := openTestDB(t, "dst")

	seeded, err := SeedDemo(src)
	require.NoError(t, err)

	copied, err := CopyAll(src, dst)
	require.NoError(t, err)
	assert.Equal(t, seeded, copied)

	want, err := Export(src, time.Time{})
	require.NoError(t, err)
	got, err := Export(dst, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, want.Events, got.Events)
	assert.Equal(t, want.StandalonePages, got.StandalonePages)
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	gdb := openTestDB(t, "main")

	first, err := SeedDemo(gdb)
	require.NoError(t, err)
	assert.Equal(t, len(demoEvents), first.Events)

	second, err := SeedDemo(gdb)
	require.NoError(t, err)
	assert.Zero(t, second.Total())
}
