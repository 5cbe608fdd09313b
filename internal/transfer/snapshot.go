// Package transfer moves site content in and out of the database: JSON snapshots,
// legacy flat-file imports, database-to-database copies and demo seed data.
package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/emberhaus/internal/db"
	"github.com/emberhaus/internal/service"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotVersion is written into every snapshot and checked on restore.
const SnapshotVersion = 1

// Snapshot holds every collection in its public JSON shape, drafts included.
type Snapshot struct {
	Version         int                          `json:"version"`
	CreatedAt       time.Time                    `json:"createdAt"`
	Journal         []service.JournalPostView    `json:"journal"`
	Events          []service.EventView          `json:"events"`
	Rituals         []service.RitualView         `json:"rituals"`
	Pages           []service.PageContentView    `json:"pages"`
	StandalonePages []service.StandalonePageView `json:"standalonePages"`
}

// Counts reports how many rows of each collection were written.
type Counts struct {
	Journal         int `json:"journal"`
	Events          int `json:"events"`
	Rituals         int `json:"rituals"`
	Pages           int `json:"pages"`
	StandalonePages int `json:"standalonePages"`
}

// Total sums all collections.
func (c Counts) Total() int {
	return c.Journal + c.Events + c.Rituals + c.Pages + c.StandalonePages
}

// Export reads every row of every collection.
func Export(gdb *gorm.DB, now time.Time) (*Snapshot, error) {
	all := service.ListOptions{IncludeDrafts: true, Sort: "created"}

	journal, err := service.NewJournalService(gdb).List(all)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	events, err := service.NewEventService(gdb).List(all)
	if err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	rituals, err := service.NewRitualService(gdb).List(all)
	if err != nil {
		return nil, fmt.Errorf("reading rituals: %w", err)
	}
	sections, err := service.NewSectionService(gdb).List(service.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading page sections: %w", err)
	}
	pages, err := service.NewStandalonePageService(gdb).List(all)
	if err != nil {
		return nil, fmt.Errorf("reading standalone pages: %w", err)
	}

	return &Snapshot{
		Version:         SnapshotVersion,
		CreatedAt:       now.UTC(),
		Journal:         service.MapViews(journal, service.JournalPostToView),
		Events:          service.MapViews(events, service.EventToView),
		Rituals:         service.MapViews(rituals, service.RitualToView),
		Pages:           service.MapViews(sections, service.PageContentToView),
		StandalonePages: service.MapViews(pages, service.StandalonePageToView),
	}, nil
}

// WriteSnapshot encodes snap as indented JSON.
func WriteSnapshot(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ReadSnapshot decodes a snapshot and rejects unknown versions.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return &snap, nil
}

// Restore writes a snapshot in one transaction. With replace every table is emptied
// first; otherwise rows are upserted by id.
func Restore(gdb *gorm.DB, snap *Snapshot, replace bool) (Counts, error) {
	var counts Counts
	err := gdb.Transaction(func(tx *gorm.DB) error {
		if replace {
			for _, model := range db.Models() {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return fmt.Errorf("emptying %T: %w", model, err)
				}
			}
		}

		var err error
		if counts.Journal, err = upsert(tx, snap.Journal, service.JournalPostFromView); err != nil {
			return fmt.Errorf("restoring journal: %w", err)
		}
		if counts.Events, err = upsert(tx, snap.Events, service.EventFromView); err != nil {
			return fmt.Errorf("restoring events: %w", err)
		}
		if counts.Rituals, err = upsert(tx, snap.Rituals, service.RitualFromView); err != nil {
			return fmt.Errorf("restoring rituals: %w", err)
		}
		if counts.Pages, err = upsert(tx, snap.Pages, service.PageContentFromView); err != nil {
			return fmt.Errorf("restoring page sections: %w", err)
		}
		if counts.StandalonePages, err = upsert(tx, snap.StandalonePages, service.StandalonePageFromView); err != nil {
			return fmt.Errorf("restoring standalone pages: %w", err)
		}
		return nil
	})
	if err != nil {
		return Counts{}, err
	}
	return counts, nil
}

func upsert[V any, R any](tx *gorm.DB, views []V, fromView func(V) R) (int, error) {
	if len(views) == 0 {
		return 0, nil
	}
	rows := service.MapViews(views, fromView)
	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&rows, 100).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}
