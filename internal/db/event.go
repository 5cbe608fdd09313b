package db

import "time"

// Event is a dated studio event such as a sauna evening or workshop.
type Event struct {
	ID          uint      `gorm:"primaryKey"`
	Slug        string    `gorm:"size:191;uniqueIndex;not null"`
	Title       string    `gorm:"size:255;not null"`
	Category    string    `gorm:"size:120;index"`
	Description string    `gorm:"type:text"`
	Image       string    `gorm:"size:500"`
	Date        time.Time `gorm:"index"`
	Time        string    `gorm:"size:80"`
	Location    string    `gorm:"size:255"`
	Capacity    int
	Price       string `gorm:"size:60"`
	Published   bool   `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
