package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Instructor is stored as a JSON object on the ritual row.
type Instructor struct {
	Name  string `json:"name"`
	Bio   string `json:"bio"`
	Image string `json:"image"`
}

// Value implements driver.Valuer.
func (i Instructor) Value() (driver.Value, error) {
	b, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Malformed values read back as an empty instructor.
func (i *Instructor) Scan(value interface{}) error {
	if i == nil {
		return fmt.Errorf("db.Instructor: Scan on nil pointer")
	}
	*i = Instructor{}
	raw, ok := columnText(value)
	if !ok || raw == "" || raw == "null" {
		return nil
	}
	var decoded Instructor
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil
	}
	*i = decoded
	return nil
}

// ScheduleItem is one step of a ritual's running order.
type ScheduleItem struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

// FAQItem is a question/answer pair shown on the ritual page.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Ritual 定义了仪式（课程）模型，列表字段以 JSON 文本存储
type Ritual struct {
	ID               uint                   `gorm:"primaryKey"`
	Slug             string                 `gorm:"size:191;uniqueIndex;not null"`
	Title            string                 `gorm:"size:255;not null"`
	Subtitle         string                 `gorm:"size:255"`
	ShortDescription string                 `gorm:"type:text"`
	LongDescription  string                 `gorm:"type:text"`
	Image            string                 `gorm:"size:500"`
	Duration         string                 `gorm:"size:80"`
	Instructor       Instructor             `gorm:"type:text"`
	Schedule         JSONList[ScheduleItem] `gorm:"type:text"`
	Benefits         StringList             `gorm:"type:text"`
	FAQ              JSONList[FAQItem]      `gorm:"column:faq;type:text"`
	Published        bool                   `gorm:"index;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
