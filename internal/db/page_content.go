package db

import "time"

// PageContent holds an editable fragment of a static page section. Content is a
// validated, kind-tagged JSON document.
type PageContent struct {
	ID              uint   `gorm:"primaryKey"`
	Page            string `gorm:"size:100;not null;uniqueIndex:idx_page_section"`
	Section         string `gorm:"size:100;not null;uniqueIndex:idx_page_section"`
	Title           string `gorm:"size:255"`
	Subtitle        string `gorm:"size:255"`
	Content         string `gorm:"type:text"`
	BackgroundImage string `gorm:"size:500"`
	OverlayOpacity  float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName 指定自定义表名。
func (PageContent) TableName() string {
	return "page_contents"
}
