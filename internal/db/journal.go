package db

import "time"

// JournalPost 定义了日志文章模型
type JournalPost struct {
	ID           uint       `gorm:"primaryKey"`
	Slug         string     `gorm:"size:191;uniqueIndex;not null"`
	Title        string     `gorm:"size:255;not null"`
	Excerpt      string     `gorm:"type:text"`
	Content      string     `gorm:"type:text"`
	Date         time.Time  `gorm:"index"`
	ReadTime     string     `gorm:"size:40"`
	Categories   StringList `gorm:"type:text"`
	AuthorName   string     `gorm:"size:120"`
	AuthorAvatar string     `gorm:"size:500"`
	Image        string     `gorm:"size:500"`
	ImageAlt     string     `gorm:"size:255"`
	Published    bool       `gorm:"index;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName 指定自定义表名。
func (JournalPost) TableName() string {
	return "journal_posts"
}
