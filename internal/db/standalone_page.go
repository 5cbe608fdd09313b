package db

import "time"

// StandalonePage represents a freestanding content page such as Terms or About.
type StandalonePage struct {
	ID              uint   `gorm:"primaryKey"`
	Slug            string `gorm:"size:191;uniqueIndex;not null"`
	Title           string `gorm:"size:255;not null"`
	Content         string `gorm:"type:text"`
	MetaTitle       string `gorm:"size:255"`
	MetaDescription string `gorm:"size:500"`
	Published       bool   `gorm:"index;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
