package service

import (
	"github.com/emberhaus/internal/db"
	"gorm.io/gorm"
)

// CollectionStats counts rows of one collection.
type CollectionStats struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Drafts    int64 `json:"drafts"`
}

// Stats aggregates the dashboard counters.
type Stats struct {
	Journal         CollectionStats `json:"journal"`
	Events          CollectionStats `json:"events"`
	Rituals         CollectionStats `json:"rituals"`
	Pages           CollectionStats `json:"pages"`
	StandalonePages CollectionStats `json:"standalonePages"`
}

// StatsService computes dashboard counters.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService creates a StatsService instance.
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{db: gdb}
}

// Collect counts every collection. Page sections have no draft state, so all of them
// count as published.
func (s *StatsService) Collect() (*Stats, error) {
	var stats Stats
	var err error

	if stats.Journal, err = s.publishable(&db.JournalPost{}); err != nil {
		return nil, err
	}
	if stats.Events, err = s.publishable(&db.Event{}); err != nil {
		return nil, err
	}
	if stats.Rituals, err = s.publishable(&db.Ritual{}); err != nil {
		return nil, err
	}
	if stats.StandalonePages, err = s.publishable(&db.StandalonePage{}); err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.PageContent{}).Count(&stats.Pages.Total).Error; err != nil {
		return nil, err
	}
	stats.Pages.Published = stats.Pages.Total
	return &stats, nil
}

func (s *StatsService) publishable(model interface{}) (CollectionStats, error) {
	var counts CollectionStats
	if err := s.db.Model(model).Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	if err := s.db.Model(model).Where("published = ?", true).Count(&counts.Published).Error; err != nil {
		return counts, err
	}
	counts.Drafts = counts.Total - counts.Published
	return counts, nil
}
